package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/jtarchie/environments/storage"
	"github.com/samber/lo"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout has a fixed width so that lexical order on the TEXT columns
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const columns = `id, name, image, created_at, updated_at`

type Sqlite struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewSqlite(dsn string, logger *slog.Logger) (storage.Driver, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")

	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	//nolint: noctx
	_, err = db.Exec(`PRAGMA busy_timeout = 5000`)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	//nolint: noctx
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS containers (
			id TEXT NOT NULL PRIMARY KEY CHECK (id <> ''),
			name TEXT NOT NULL UNIQUE CHECK (name <> ''),
			image TEXT NOT NULL CHECK (image <> ''),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
	`)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to create containers table: %w", err)
	}

	logger.Debug("storage.sqlite.opened", "dsn", dsn)

	return &Sqlite{
		db:     db,
		logger: logger.WithGroup("storage.sqlite"),
		now:    time.Now,
	}, nil
}

func (s *Sqlite) Name() string {
	return "sqlite"
}

func (s *Sqlite) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(fmt.Errorf("could not initiate transaction: %w", err))
	}

	return &Tx{tx: tx, now: s.now}, nil
}

func (s *Sqlite) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

type Tx struct {
	tx  *sql.Tx
	now func() time.Time
}

// row mirrors the table; timestamps are stored as fixed width UTC text.
type row struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Image     string `db:"image"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r row) container() (storage.Container, error) {
	createdAt, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return storage.Container{}, fmt.Errorf("could not parse created_at %q: %w", r.CreatedAt, err)
	}

	updatedAt, err := time.Parse(timeLayout, r.UpdatedAt)
	if err != nil {
		return storage.Container{}, fmt.Errorf("could not parse updated_at %q: %w", r.UpdatedAt, err)
	}

	return storage.Container{
		ID:        r.ID,
		Name:      r.Name,
		Image:     r.Image,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (t *Tx) CreateContainer(ctx context.Context, id, name, image string) (*storage.Container, error) {
	now := t.now().UTC().Format(timeLayout)

	var result row

	err := sqlscan.Get(ctx, t.tx, &result, `
		INSERT INTO containers (id, name, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+columns,
		id, name, image, now, now,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("could not insert container: %w", err))
	}

	container, err := result.container()
	if err != nil {
		return nil, classify(err)
	}

	return &container, nil
}

func (t *Tx) ListContainers(ctx context.Context) ([]storage.Container, error) {
	var rows []row

	err := sqlscan.Select(ctx, t.tx, &rows, `
		SELECT `+columns+`
		FROM containers
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, classify(fmt.Errorf("could not select containers: %w", err))
	}

	containers := make([]storage.Container, 0, len(rows))

	for _, r := range rows {
		container, err := r.container()
		if err != nil {
			return nil, classify(err)
		}

		containers = append(containers, container)
	}

	return containers, nil
}

func (t *Tx) FindContainerByName(ctx context.Context, name string) (*storage.Container, error) {
	return t.one(ctx, `SELECT `+columns+` FROM containers WHERE name = ?`, name)
}

func (t *Tx) DeleteContainerByName(ctx context.Context, name string) (*storage.Container, error) {
	return t.one(ctx, `DELETE FROM containers WHERE name = ? RETURNING `+columns, name)
}

func (t *Tx) one(ctx context.Context, query string, args ...any) (*storage.Container, error) {
	var result row

	err := sqlscan.Get(ctx, t.tx, &result, query, args...)
	if sqlscan.NotFound(err) {
		return nil, nil //nolint: nilnil
	}

	if err != nil {
		return nil, classify(fmt.Errorf("could not query container: %w", err))
	}

	container, err := result.container()
	if err != nil {
		return nil, classify(err)
	}

	return &container, nil
}

func (t *Tx) Commit() error {
	err := t.tx.Commit()
	if err != nil {
		return classify(fmt.Errorf("could not commit transaction: %w", err))
	}

	return nil
}

func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return classify(fmt.Errorf("could not rollback transaction: %w", err))
	}

	return nil
}

// codes reads the extended result code of a sqlite failure.
// https://www.sqlite.org/rescode.html#constraint
func codes(err error) (storage.Kind, string, bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return storage.KindUnhandled, "", false
	}

	code := sqliteErr.Code()

	switch {
	case lo.Contains([]int{sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY}, code):
		return storage.KindUniqueViolation, sqliteErr.Error(), true
	case code&0xff == sqlite3.SQLITE_CONSTRAINT:
		return storage.KindModelViolation, sqliteErr.Error(), true
	}

	return storage.KindUnhandled, "", false
}

func classify(err error) error {
	return storage.Classify(err, codes)
}

func init() {
	storage.Add("sqlite", NewSqlite)
}

var (
	_ storage.Driver = &Sqlite{}
	_ storage.Tx     = &Tx{}
)
