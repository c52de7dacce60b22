package engine_test

import (
	"testing"

	"github.com/jtarchie/environments/engine"
	. "github.com/onsi/gomega"
)

func TestGetParam(t *testing.T) {
	t.Run("returns DSN parameter when present", func(t *testing.T) {
		assert := NewGomegaWithT(t)

		params := map[string]string{"host": "unix:///var/run/docker.sock"}
		result := engine.GetParam(params, "host", "ENVIRONMENTS_TEST_HOST", "default")

		assert.Expect(result).To(Equal("unix:///var/run/docker.sock"))
	})

	t.Run("falls back to environment variable when DSN param is empty", func(t *testing.T) {
		assert := NewGomegaWithT(t)

		t.Setenv("ENVIRONMENTS_TEST_HOST", "tcp://127.0.0.1:2375")

		result := engine.GetParam(map[string]string{}, "host", "ENVIRONMENTS_TEST_HOST", "default")

		assert.Expect(result).To(Equal("tcp://127.0.0.1:2375"))
	})

	t.Run("returns default value when neither DSN param nor env var exist", func(t *testing.T) {
		assert := NewGomegaWithT(t)

		result := engine.GetParam(map[string]string{}, "host", "ENVIRONMENTS_NONEXISTENT", "default-value")

		assert.Expect(result).To(Equal("default-value"))
	})
}

func TestParseParams(t *testing.T) {
	t.Parallel()
	assert := NewGomegaWithT(t)

	params, err := engine.ParseParams("docker://?host=ssh://user@remote")
	assert.Expect(err).NotTo(HaveOccurred())
	assert.Expect(params).To(HaveKeyWithValue("host", "ssh://user@remote"))

	params, err = engine.ParseParams("memory")
	assert.Expect(err).NotTo(HaveOccurred())
	assert.Expect(params).To(BeEmpty())
}
