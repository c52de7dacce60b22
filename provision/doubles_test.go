package provision_test

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/jtarchie/environments/engine"
	"github.com/jtarchie/environments/engine/memory"
	"github.com/jtarchie/environments/storage"
	. "github.com/onsi/gomega"
)

// faultyEngine wraps the memory engine, records calls and injects failures.
type faultyEngine struct {
	*memory.Memory

	mu        sync.Mutex
	calls     []string
	listCalls [][]string

	pullErr   error
	createErr error
	startErr  error
	listErr   error
	emptyID   bool
}

func newFaultyEngine() *faultyEngine {
	return &faultyEngine{Memory: memory.New(slog.Default())}
}

func (f *faultyEngine) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
}

func (f *faultyEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.calls...)
}

func (f *faultyEngine) PullImage(ctx context.Context, reference string) iter.Seq2[engine.PullProgress, error] {
	f.record("pull")

	if f.pullErr != nil {
		return engine.Stream(func(yield func(engine.PullProgress) bool) error {
			yield(engine.PullProgress{Status: "Pulling from " + reference})

			return f.pullErr
		})
	}

	return f.Memory.PullImage(ctx, reference)
}

func (f *faultyEngine) CreateContainer(ctx context.Context, name string, config engine.ContainerConfig) (string, error) {
	f.record("create")

	if f.createErr != nil {
		return "", f.createErr
	}

	id, err := f.Memory.CreateContainer(ctx, name, config)
	if f.emptyID {
		return "", err
	}

	return id, err
}

func (f *faultyEngine) StartContainer(ctx context.Context, id string) error {
	f.record("start")

	if f.startErr != nil {
		return f.startErr
	}

	return f.Memory.StartContainer(ctx, id)
}

func (f *faultyEngine) ListContainers(ctx context.Context, ids []string) ([]engine.ContainerView, error) {
	f.record("list")

	f.mu.Lock()
	f.listCalls = append(f.listCalls, ids)
	f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.Memory.ListContainers(ctx, ids)
}

// faultyStore wraps a storage driver, counts transactions and injects failures.
type faultyStore struct {
	storage.Driver

	mu        sync.Mutex
	begins    int
	createErr error
	listErr   error
}

func (f *faultyStore) Begin(ctx context.Context) (storage.Tx, error) {
	f.mu.Lock()
	f.begins++
	f.mu.Unlock()

	tx, err := f.Driver.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &faultyTx{Tx: tx, store: f}, nil
}

func (f *faultyStore) Begins() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.begins
}

type faultyTx struct {
	storage.Tx

	store *faultyStore
}

func (t *faultyTx) CreateContainer(ctx context.Context, id, name, image string) (*storage.Container, error) {
	if t.store.createErr != nil {
		return nil, t.store.createErr
	}

	return t.Tx.CreateContainer(ctx, id, name, image)
}

func (t *faultyTx) ListContainers(ctx context.Context) ([]storage.Container, error) {
	if t.store.listErr != nil {
		return nil, t.store.listErr
	}

	return t.Tx.ListContainers(ctx)
}

func newStore(t *testing.T, init storage.InitFunc) *faultyStore {
	t.Helper()

	assert := NewGomegaWithT(t)

	buildFile, err := os.CreateTemp(t.TempDir(), "")
	assert.Expect(err).NotTo(HaveOccurred())

	defer func() { _ = buildFile.Close() }()

	client, err := init(buildFile.Name(), slog.Default())
	assert.Expect(err).NotTo(HaveOccurred())

	t.Cleanup(func() { _ = client.Close() })

	return &faultyStore{Driver: client}
}
