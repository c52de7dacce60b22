package provision

import (
	"context"
	"fmt"

	"github.com/jtarchie/environments/engine"
	"github.com/jtarchie/environments/storage"
)

// createRun walks the create workflow one step at a time.
// Each step either advances to the next one or fails the run.
type createRun struct {
	service  *Service
	request  CreateRequest
	step     Step
	engineID string
	record   *storage.Container
}

// Create pulls the image, creates and starts the container, then records it.
// There are no retries; the first failure ends the workflow.
func (s *Service) Create(ctx context.Context, request CreateRequest) (*Container, error) {
	err := s.validate.Struct(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	run := &createRun{
		service: s,
		request: request,
		step:    StepPullingImage,
	}

	logger := s.logger.With("name", request.Name, "image", request.Image)

	for run.step != StepDone {
		step := run.step
		logger.Debug("create.step", "step", step)

		err := run.advance(ctx)
		if err != nil {
			logger.Error("create.failed", "step", step, "err", err)

			if run.engineID != "" {
				logger.Warn("create.orphaned", "id", run.engineID, "step", step)
			}

			return nil, err
		}
	}

	logger.Info("create.done", "id", run.engineID)

	container := fromRecord(*run.record)
	container.ID = run.engineID

	return &container, nil
}

func (r *createRun) advance(ctx context.Context) error {
	switch r.step {
	case StepPullingImage:
		err := engine.Drain(r.service.engine.PullImage(ctx, r.request.Image), r.service.progress)
		if err != nil {
			return &EngineError{Step: r.step, Err: fmt.Errorf("could not pull image %q: %w", r.request.Image, err)}
		}

		r.step = StepCreatingContainer
	case StepCreatingContainer:
		id, err := r.service.engine.CreateContainer(ctx, r.request.Name, engine.ContainerConfig{
			Image: r.request.Image,
		})
		if err != nil {
			return &EngineError{Step: r.step, Err: fmt.Errorf("could not create container %q: %w", r.request.Name, err)}
		}

		r.engineID = id
		r.step = StepStarting
	case StepStarting:
		if r.engineID == "" {
			return aborted(r.step, "engine returned an empty container id")
		}

		err := r.service.engine.StartContainer(ctx, r.engineID)
		if err != nil {
			return &EngineError{Step: r.step, Err: fmt.Errorf("could not start container %s: %w", r.engineID, err)}
		}

		r.step = StepPersisting
	case StepPersisting:
		err := storage.WithTx(ctx, r.service.store, func(tx storage.Tx) error {
			record, err := tx.CreateContainer(ctx, r.engineID, r.request.Name, r.request.Image)
			if err != nil {
				return fmt.Errorf("could not create container record: %w", err)
			}

			r.record = record

			return nil
		})
		if err != nil {
			return &StoreError{Step: r.step, Err: err}
		}

		if r.record == nil {
			return aborted(r.step, "store returned no record")
		}

		r.step = StepDone
	default:
		return aborted(r.step, "unknown step")
	}

	return nil
}
