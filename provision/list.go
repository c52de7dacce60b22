package provision

import (
	"context"
	"fmt"

	"github.com/jtarchie/environments/engine"
	"github.com/jtarchie/environments/storage"
	"github.com/samber/lo"
)

// List reconciles the persisted records with the engine.
//
// Only persisted ids are asked of the engine, and only records the engine
// still reports are returned. Records without a live container are dropped
// from the response, not deleted from the store.
func (s *Service) List(ctx context.Context) (*ContainerList, error) {
	var records []storage.Container

	err := storage.WithTx(ctx, s.store, func(tx storage.Tx) error {
		var err error

		records, err = tx.ListContainers(ctx)
		if err != nil {
			return fmt.Errorf("could not get all containers: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, &StoreError{Step: StepListingRecords, Err: err}
	}

	if len(records) == 0 {
		return newContainerList(nil), nil
	}

	ids := lo.Map(records, func(record storage.Container, _ int) string {
		return record.ID
	})

	views, err := s.engine.ListContainers(ctx, ids)
	if err != nil {
		return nil, &EngineError{Step: StepListingContainers, Err: fmt.Errorf("could not list containers: %w", err)}
	}

	containers := merge(records, views)

	if dropped := len(records) - len(containers); dropped > 0 {
		s.logger.Info("list.dropped", "count", dropped)
	}

	return newContainerList(containers), nil
}

// merge keeps the persisted order. Identity, image and timestamps come from
// the engine; the name comes from the record with the same id.
func merge(records []storage.Container, views []engine.ContainerView) []Container {
	live := lo.KeyBy(views, func(view engine.ContainerView) string {
		return view.ID
	})

	return lo.FilterMap(records, func(record storage.Container, _ int) (Container, bool) {
		view, ok := live[record.ID]
		if !ok {
			return Container{}, false
		}

		return Container{
			ID:        view.ID,
			Name:      record.Name,
			Image:     view.Image,
			CreatedAt: view.Created,
			UpdatedAt: view.Created,
		}, true
	})
}
