package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/jtarchie/environments/engine"
)

func (d *Docker) PullImage(ctx context.Context, reference string) iter.Seq2[engine.PullProgress, error] {
	return engine.Stream(func(yield func(engine.PullProgress) bool) error {
		reader, err := d.client.ImagePull(ctx, reference, image.PullOptions{})
		if err != nil {
			if errdefs.IsNotFound(err) {
				return fmt.Errorf("image %q not found: %w", reference, err)
			}

			return fmt.Errorf("failed to initiate pull image: %w", err)
		}
		defer func() { _ = reader.Close() }()

		decoder := json.NewDecoder(reader)

		for {
			var message jsonmessage.JSONMessage

			err := decoder.Decode(&message)
			if errors.Is(err, io.EOF) {
				return nil
			}

			if err != nil {
				return fmt.Errorf("failed to pull image: %w", err)
			}

			if message.Error != nil {
				return fmt.Errorf("failed to pull image %q: %w", reference, message.Error)
			}

			progress := engine.PullProgress{
				ID:     message.ID,
				Status: message.Status,
			}

			if message.Progress != nil {
				progress.Current = message.Progress.Current
				progress.Total = message.Progress.Total
				progress.Progress = message.Progress.String()
			}

			if !yield(progress) {
				return nil
			}
		}
	})
}

func (d *Docker) CreateContainer(ctx context.Context, name string, config engine.ContainerConfig) (string, error) {
	labels := map[string]string{
		engine.LabelManaged: "true",
		engine.LabelName:    name,
	}
	maps.Copy(labels, config.Labels)

	response, err := d.client.ContainerCreate(
		ctx,
		&container.Config{
			Image:  config.Image,
			Cmd:    config.Cmd,
			Env:    config.Env,
			Labels: labels,
		},
		&container.HostConfig{}, nil, nil,
		name,
	)
	if err != nil {
		if errdefs.IsConflict(err) {
			return "", fmt.Errorf("container name %q is already in use: %w", name, err)
		}

		return "", fmt.Errorf("failed to create container: %w", err)
	}

	for _, warning := range response.Warnings {
		d.logger.Warn("container.create.warning", "name", name, "id", response.ID, "warning", warning)
	}

	return response.ID, nil
}

func (d *Docker) StartContainer(ctx context.Context, id string) error {
	err := d.client.ContainerStart(ctx, id, container.StartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	return nil
}

func (d *Docker) ListContainers(ctx context.Context, ids []string) ([]engine.ContainerView, error) {
	if len(ids) == 0 {
		return []engine.ContainerView{}, nil
	}

	filter := filters.NewArgs()
	for _, id := range ids {
		filter.Add("id", id)
	}

	containers, err := d.client.ContainerList(ctx, container.ListOptions{Filters: filter, All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	views := make([]engine.ContainerView, 0, len(containers))
	for _, summary := range containers {
		views = append(views, engine.ContainerView{
			ID:      summary.ID,
			Image:   summary.Image,
			Created: time.Unix(summary.Created, 0).UTC(),
		})
	}

	// the engine matches id filters by prefix
	return engine.FilterByIDs(views, ids), nil
}
