package engine

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

// ErrStreamConsumed is yielded when a pull stream is ranged over a second time.
var ErrStreamConsumed = errors.New("pull stream already consumed")

const (
	LabelManaged = "environments.managed"
	LabelName    = "environments.name"
)

// PullProgress is a single event reported while an image is pulled.
type PullProgress struct {
	ID       string
	Status   string
	Progress string
	Current  int64
	Total    int64
}

type ContainerConfig struct {
	Image  string
	Cmd    []string
	Env    []string
	Labels map[string]string
}

// ContainerView is what the engine reports about a container right now.
type ContainerView struct {
	ID      string
	Image   string
	Created time.Time
}

type Driver interface {
	Close() error
	Name() string
	// PullImage returns a finite stream that can be ranged over only once.
	PullImage(ctx context.Context, reference string) iter.Seq2[PullProgress, error]
	// CreateContainer returns the engine assigned id.
	CreateContainer(ctx context.Context, name string, config ContainerConfig) (string, error)
	StartContainer(ctx context.Context, id string) error
	// ListContainers only reports containers whose id is in ids.
	// An empty ids returns nothing.
	ListContainers(ctx context.Context, ids []string) ([]ContainerView, error)
}

// Stream turns a producer into a pull stream that can only be consumed once.
// A producer error is yielded as the final element.
func Stream(produce func(yield func(PullProgress) bool) error) iter.Seq2[PullProgress, error] {
	var consumed atomic.Bool

	return func(yield func(PullProgress, error) bool) {
		if consumed.Swap(true) {
			yield(PullProgress{}, ErrStreamConsumed)

			return
		}

		stopped := false

		err := produce(func(progress PullProgress) bool {
			if !yield(progress, nil) {
				stopped = true

				return false
			}

			return true
		})
		if err != nil && !stopped {
			yield(PullProgress{}, err)
		}
	}
}

// Drain consumes the whole stream and returns the first failure.
// observe may be nil.
func Drain(stream iter.Seq2[PullProgress, error], observe func(PullProgress)) error {
	for progress, err := range stream {
		if err != nil {
			return err
		}

		if observe != nil {
			observe(progress)
		}
	}

	return nil
}

// FilterByIDs keeps views whose id is exactly one of ids.
func FilterByIDs(views []ContainerView, ids []string) []ContainerView {
	allowed := lo.SliceToMap(ids, func(id string) (string, struct{}) {
		return id, struct{}{}
	})

	return lo.Filter(views, func(view ContainerView, _ int) bool {
		_, ok := allowed[view.ID]

		return ok
	})
}
