package storage_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jtarchie/environments/storage"
	. "github.com/onsi/gomega"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	errCode := errors.New("code 42")

	codes := func(err error) (storage.Kind, string, bool) {
		if errors.Is(err, errCode) {
			return storage.KindUniqueViolation, "duplicate key", true
		}

		return storage.KindUnhandled, "", false
	}

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		assert := NewGomegaWithT(t)

		assert.Expect(storage.Classify(nil, codes)).To(Succeed())
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		t.Parallel()
		assert := NewGomegaWithT(t)

		err := storage.Classify(fmt.Errorf("select: %w", sql.ErrNoRows), codes)
		assert.Expect(err).To(MatchError(storage.ErrNotFound))
		assert.Expect(storage.KindOf(err)).To(Equal(storage.KindNotFound))
	})

	t.Run("backend codes map through the table", func(t *testing.T) {
		t.Parallel()
		assert := NewGomegaWithT(t)

		err := storage.Classify(fmt.Errorf("insert: %w", errCode), codes)
		assert.Expect(err).To(MatchError(storage.ErrUniqueViolation))
		assert.Expect(err.Error()).To(ContainSubstring("duplicate key"))
	})

	t.Run("unknown failures are unhandled and keep their source", func(t *testing.T) {
		t.Parallel()
		assert := NewGomegaWithT(t)

		source := errors.New("disk on fire")
		err := storage.Classify(source, codes)
		assert.Expect(err).To(MatchError(storage.ErrUnhandled))
		assert.Expect(errors.Unwrap(err)).To(Equal(source))
		assert.Expect(err).NotTo(MatchError(storage.ErrNotFound))
	})

	t.Run("classified errors pass through", func(t *testing.T) {
		t.Parallel()
		assert := NewGomegaWithT(t)

		original := storage.NewModelViolation("CHECK constraint failed")
		err := storage.Classify(fmt.Errorf("wrapped: %w", original), codes)
		assert.Expect(storage.KindOf(err)).To(Equal(storage.KindModelViolation))
	})
}
