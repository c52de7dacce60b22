// Package memory is an in-process storage driver. Transactions are
// serialised: Begin holds the driver until Commit or Rollback.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jtarchie/environments/storage"
)

var ErrTxDone = errors.New("transaction has already been committed or rolled back")

type Memory struct {
	mu         sync.Mutex
	containers []storage.Container
	closed     bool
	now        func() time.Time
}

func NewMemory(_ string, _ *slog.Logger) (storage.Driver, error) {
	return New(), nil
}

func New() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Begin(ctx context.Context) (storage.Tx, error) {
	err := ctx.Err()
	if err != nil {
		return nil, storage.Classify(fmt.Errorf("could not initiate transaction: %w", err), nil)
	}

	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()

		return nil, storage.Classify(errors.New("could not initiate transaction: driver is closed"), nil)
	}

	return &Tx{
		driver:     m,
		containers: slices.Clone(m.containers),
	}, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

type Tx struct {
	driver     *Memory
	containers []storage.Container
	done       bool
}

func (t *Tx) CreateContainer(_ context.Context, id, name, image string) (*storage.Container, error) {
	switch {
	case id == "":
		return nil, storage.NewModelViolation("CHECK constraint failed: id <> ''")
	case name == "":
		return nil, storage.NewModelViolation("CHECK constraint failed: name <> ''")
	case image == "":
		return nil, storage.NewModelViolation("CHECK constraint failed: image <> ''")
	}

	for _, existing := range t.containers {
		if existing.ID == id {
			return nil, storage.NewUniqueViolation("UNIQUE constraint failed: containers.id")
		}

		if existing.Name == name {
			return nil, storage.NewUniqueViolation("UNIQUE constraint failed: containers.name")
		}
	}

	now := t.driver.now().UTC()
	container := storage.Container{
		ID:        id,
		Name:      name,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.containers = append(t.containers, container)

	return &container, nil
}

func (t *Tx) ListContainers(_ context.Context) ([]storage.Container, error) {
	containers := slices.Clone(t.containers)
	if containers == nil {
		containers = []storage.Container{}
	}

	slices.SortStableFunc(containers, func(a, b storage.Container) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return containers, nil
}

func (t *Tx) FindContainerByName(_ context.Context, name string) (*storage.Container, error) {
	index := t.indexOf(name)
	if index < 0 {
		return nil, nil //nolint: nilnil
	}

	container := t.containers[index]

	return &container, nil
}

func (t *Tx) DeleteContainerByName(_ context.Context, name string) (*storage.Container, error) {
	index := t.indexOf(name)
	if index < 0 {
		return nil, nil //nolint: nilnil
	}

	container := t.containers[index]
	t.containers = slices.Delete(t.containers, index, index+1)

	return &container, nil
}

func (t *Tx) indexOf(name string) int {
	return slices.IndexFunc(t.containers, func(c storage.Container) bool {
		return c.Name == name
	})
}

func (t *Tx) Commit() error {
	if t.done {
		return storage.Classify(ErrTxDone, nil)
	}

	t.done = true
	t.driver.containers = t.containers
	t.driver.mu.Unlock()

	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}

	t.done = true
	t.driver.mu.Unlock()

	return nil
}

func init() {
	storage.Add("memory", NewMemory)
}

var (
	_ storage.Driver = &Memory{}
	_ storage.Tx     = &Tx{}
)
