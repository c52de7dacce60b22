// Package memory is an in-process engine that keeps containers in a map.
// It never touches a real runtime and is used by tests and local demos.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jtarchie/environments/engine"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrNoSuchImage  = errors.New("no such image")
	ErrNoSuchObject = errors.New("no such container")
)

type Container struct {
	ID      string
	Name    string
	Image   string
	Labels  map[string]string
	Running bool
	Created time.Time
}

type Memory struct {
	mu         sync.Mutex
	images     map[string]struct{}
	containers map[string]*Container
	logger     *slog.Logger
	now        func() time.Time
}

func NewMemory(_ string, logger *slog.Logger) (engine.Driver, error) {
	return New(logger), nil
}

func New(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}

	return &Memory{
		images:     map[string]struct{}{},
		containers: map[string]*Container{},
		logger:     logger.WithGroup("engine.memory"),
		now:        time.Now,
	}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) PullImage(ctx context.Context, reference string) iter.Seq2[engine.PullProgress, error] {
	return engine.Stream(func(yield func(engine.PullProgress) bool) error {
		if reference == "" {
			return fmt.Errorf("invalid reference format: %w", ErrNoSuchImage)
		}

		events := []engine.PullProgress{
			{Status: "Pulling from " + reference},
			{ID: "layer", Status: "Downloading", Current: 512, Total: 1024},
			{ID: "layer", Status: "Download complete", Current: 1024, Total: 1024},
			{ID: "layer", Status: "Pull complete"},
		}

		for _, event := range events {
			err := ctx.Err()
			if err != nil {
				return fmt.Errorf("failed to pull image: %w", err)
			}

			if !yield(event) {
				return nil
			}
		}

		m.mu.Lock()
		m.images[reference] = struct{}{}
		m.mu.Unlock()

		return nil
	})
}

func (m *Memory) CreateContainer(ctx context.Context, name string, config engine.ContainerConfig) (string, error) {
	err := ctx.Err()
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.images[config.Image]; !ok {
		return "", fmt.Errorf("failed to create container: %q: %w", config.Image, ErrNoSuchImage)
	}

	for _, existing := range m.containers {
		if existing.Name == name {
			return "", fmt.Errorf("container name %q is already in use by %s: %w", name, existing.ID, ErrConflict)
		}
	}

	id, err := gonanoid.Generate("0123456789abcdef", 64)
	if err != nil {
		return "", fmt.Errorf("failed to generate container id: %w", err)
	}

	labels := map[string]string{
		engine.LabelManaged: "true",
		engine.LabelName:    name,
	}
	maps.Copy(labels, config.Labels)

	m.containers[id] = &Container{
		ID:      id,
		Name:    name,
		Image:   config.Image,
		Labels:  labels,
		Created: m.now().UTC().Truncate(time.Second),
	}

	m.logger.Debug("container.created", "id", id, "name", name)

	return id, nil
}

func (m *Memory) StartContainer(ctx context.Context, id string) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	container, ok := m.containers[id]
	if !ok {
		return fmt.Errorf("failed to start container %s: %w", id, ErrNoSuchObject)
	}

	container.Running = true

	return nil
}

func (m *Memory) ListContainers(ctx context.Context, ids []string) ([]engine.ContainerView, error) {
	if len(ids) == 0 {
		return []engine.ContainerView{}, nil
	}

	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]engine.ContainerView, 0, len(m.containers))
	for _, container := range m.containers {
		views = append(views, engine.ContainerView{
			ID:      container.ID,
			Image:   container.Image,
			Created: container.Created,
		})
	}

	slices.SortFunc(views, func(a, b engine.ContainerView) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return engine.FilterByIDs(views, ids), nil
}

// Containers returns a snapshot of every container the engine knows about.
func (m *Memory) Containers() []Container {
	m.mu.Lock()
	defer m.mu.Unlock()

	containers := make([]Container, 0, len(m.containers))
	for _, container := range m.containers {
		containers = append(containers, *container)
	}

	return containers
}

// Get returns the container with the given id.
func (m *Memory) Get(id string) (Container, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	container, ok := m.containers[id]
	if !ok {
		return Container{}, false
	}

	return *container, true
}

// Remove deletes a container as if it was removed outside of this process.
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.containers, id)
}

func init() {
	engine.Add("memory", NewMemory)
}

var _ engine.Driver = &Memory{}
