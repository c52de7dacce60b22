package provision

import (
	"errors"
	"fmt"

	"github.com/jtarchie/environments/storage"
)

var (
	// ErrWorkflowAborted is returned when a step cannot use the result of a previous one.
	ErrWorkflowAborted = errors.New("workflow aborted")
	ErrInvalidRequest  = errors.New("invalid request")
)

// EngineError is a fault reported by the container engine.
type EngineError struct {
	Step Step
	Err  error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine failed while %s: %s", e.Step, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// StoreError is a classified failure of the persistence layer.
type StoreError struct {
	Step Step
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failed while %s: %s", e.Step, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Kind() storage.Kind {
	return storage.KindOf(e.Err)
}

func aborted(step Step, reason string) error {
	return fmt.Errorf("%s: %w: %s", step, ErrWorkflowAborted, reason)
}
