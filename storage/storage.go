package storage

import (
	"context"
	"time"
)

// Container is the persisted record of a provisioned container.
type Container struct {
	ID        string    `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Image     string    `db:"image"      json:"image"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Containers are the record operations available inside a transaction.
type Containers interface {
	CreateContainer(ctx context.Context, id, name, image string) (*Container, error)
	// ListContainers returns every record ordered by creation time.
	// An empty store yields an empty slice.
	ListContainers(ctx context.Context) ([]Container, error)
	// FindContainerByName returns nil without an error when nothing matches.
	FindContainerByName(ctx context.Context, name string) (*Container, error)
	// DeleteContainerByName returns the deleted record, or nil when nothing matched.
	DeleteContainerByName(ctx context.Context, name string) (*Container, error)
}

type Tx interface {
	Containers
	Commit() error
	Rollback() error
}

type Driver interface {
	Begin(ctx context.Context) (Tx, error)
	Close() error
	Name() string
}

// WithTx runs fn inside a transaction. The transaction is committed only when
// fn succeeds; every failure rolls it back and is returned classified.
func WithTx(ctx context.Context, driver Driver, fn func(tx Tx) error) error {
	tx, err := driver.Begin(ctx)
	if err != nil {
		return Classify(err, nil)
	}

	err = fn(tx)
	if err != nil {
		_ = tx.Rollback()

		return Classify(err, nil)
	}

	err = tx.Commit()
	if err != nil {
		return Classify(err, nil)
	}

	return nil
}
