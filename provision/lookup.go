package provision

import (
	"context"

	"github.com/jtarchie/environments/storage"
)

// Find returns the persisted record for name. The engine is not consulted.
func (s *Service) Find(ctx context.Context, name string) (*Container, error) {
	return s.byName(ctx, StepFinding, name, func(tx storage.Tx) (*storage.Container, error) {
		return tx.FindContainerByName(ctx, name)
	})
}

// Delete removes the persisted record for name. The engine container is left untouched.
func (s *Service) Delete(ctx context.Context, name string) (*Container, error) {
	container, err := s.byName(ctx, StepDeleting, name, func(tx storage.Tx) (*storage.Container, error) {
		return tx.DeleteContainerByName(ctx, name)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delete.done", "name", name, "id", container.ID)

	return container, nil
}

func (s *Service) byName(
	ctx context.Context,
	step Step,
	name string,
	operate func(tx storage.Tx) (*storage.Container, error),
) (*Container, error) {
	var record *storage.Container

	err := storage.WithTx(ctx, s.store, func(tx storage.Tx) error {
		var err error
		record, err = operate(tx)

		return err
	})
	if err != nil {
		return nil, &StoreError{Step: step, Err: err}
	}

	if record == nil {
		s.logger.Debug("lookup.missing", "step", step, "name", name)

		return nil, &StoreError{Step: step, Err: storage.NewNotFound()}
	}

	container := fromRecord(*record)

	return &container, nil
}
