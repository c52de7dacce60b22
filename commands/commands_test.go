package commands_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jtarchie/environments/client"
	"github.com/jtarchie/environments/commands"
	"github.com/jtarchie/environments/engine/memory"
	"github.com/jtarchie/environments/provision"
	"github.com/jtarchie/environments/server"
	"github.com/jtarchie/environments/storage/sqlite"
	"github.com/jtarchie/environments/testhelpers"
	gonanoid "github.com/matoous/go-nanoid/v2"
	. "github.com/onsi/gomega"
)

func startServer(t *testing.T, opts server.RouterOptions) string {
	t.Helper()

	assert := NewGomegaWithT(t)

	store, err := sqlite.NewSqlite(filepath.Join(t.TempDir(), "environments.db"), slog.Default())
	assert.Expect(err).NotTo(HaveOccurred())

	t.Cleanup(func() { _ = store.Close() })

	service := provision.New(memory.New(slog.Default()), store, slog.Default())
	router := server.NewRouter(slog.Default(), service, opts)

	return testhelpers.StartServer(t, router).Endpoint()
}

func containerName() string {
	return "env-" + gonanoid.MustGenerate("abcdefghijklmnopqrstuvwxyz0123456789", 10)
}

func TestRemoteCommands(t *testing.T) {
	t.Parallel()

	assert := NewGomegaWithT(t)
	target := commands.Target{ServerURL: startServer(t, server.RouterOptions{})}
	name := containerName()

	stdout := &bytes.Buffer{}
	create := &commands.Create{Target: target, Name: name, Image: "busybox:latest", Stdout: stdout}
	assert.Expect(create.Run(slog.Default())).To(Succeed())
	assert.Expect(stdout.String()).To(ContainSubstring(name))
	assert.Expect(stdout.String()).To(ContainSubstring("busybox:latest"))

	stdout.Reset()
	list := &commands.List{Target: target, Output: "json", Stdout: stdout}
	assert.Expect(list.Run(slog.Default())).To(Succeed())

	var containers provision.ContainerList
	assert.Expect(json.Unmarshal(stdout.Bytes(), &containers)).To(Succeed())
	assert.Expect(containers.ContainersCount).To(Equal(1))
	assert.Expect(containers.Containers[0].Name).To(Equal(name))

	stdout.Reset()
	list = &commands.List{Target: target, Output: "yaml", Stdout: stdout}
	assert.Expect(list.Run(slog.Default())).To(Succeed())
	assert.Expect(stdout.String()).To(ContainSubstring("containersCount: 1"))
	assert.Expect(stdout.String()).To(ContainSubstring("name: " + name))

	stdout.Reset()
	list = &commands.List{Target: target, Output: "table", Stdout: stdout}
	assert.Expect(list.Run(slog.Default())).To(Succeed())
	assert.Expect(stdout.String()).To(ContainSubstring(name + "\tbusybox:latest"))

	stdout.Reset()
	remove := &commands.Delete{Target: target, Name: name, Stdout: stdout}
	assert.Expect(remove.Run(slog.Default())).To(Succeed())
	assert.Expect(stdout.String()).To(ContainSubstring(name))

	stdout.Reset()
	list = &commands.List{Target: target, Output: "json", Stdout: stdout}
	assert.Expect(list.Run(slog.Default())).To(Succeed())
	assert.Expect(json.Unmarshal(stdout.Bytes(), &containers)).To(Succeed())
	assert.Expect(containers.ContainersCount).To(Equal(0))
}

func TestRemoteCreateDuplicate(t *testing.T) {
	t.Parallel()

	assert := NewGomegaWithT(t)
	target := commands.Target{ServerURL: startServer(t, server.RouterOptions{})}
	name := containerName()

	create := &commands.Create{Target: target, Name: name, Image: "busybox:latest", Stdout: &bytes.Buffer{}}
	assert.Expect(create.Run(slog.Default())).To(Succeed())

	create = &commands.Create{Target: target, Name: name, Image: "busybox:latest", Stdout: &bytes.Buffer{}}
	err := create.Run(slog.Default())
	assert.Expect(err).To(HaveOccurred())

	var apiErr *client.APIError
	assert.Expect(errors.As(err, &apiErr)).To(BeTrue())
	assert.Expect(apiErr.StatusCode).To(BeNumerically(">=", http.StatusBadRequest))
}

func TestRemoteDeleteMissing(t *testing.T) {
	t.Parallel()

	assert := NewGomegaWithT(t)
	target := commands.Target{ServerURL: startServer(t, server.RouterOptions{})}

	remove := &commands.Delete{Target: target, Name: "missing", Stdout: &bytes.Buffer{}}
	err := remove.Run(slog.Default())

	var apiErr *client.APIError
	assert.Expect(errors.As(err, &apiErr)).To(BeTrue())
	assert.Expect(apiErr.StatusCode).To(Equal(http.StatusNotFound))
	assert.Expect(apiErr.Kind).To(Equal("not_found"))
}

func TestRemoteBasicAuth(t *testing.T) {
	t.Parallel()

	endpoint := startServer(t, server.RouterOptions{
		BasicAuthUsername: "admin",
		BasicAuthPassword: "secret",
	})

	t.Run("without credentials", func(t *testing.T) {
		t.Parallel()

		assert := NewGomegaWithT(t)

		list := &commands.List{Target: commands.Target{ServerURL: endpoint}, Stdout: &bytes.Buffer{}}
		err := list.Run(slog.Default())

		var apiErr *client.APIError
		assert.Expect(errors.As(err, &apiErr)).To(BeTrue())
		assert.Expect(apiErr.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	t.Run("with credentials", func(t *testing.T) {
		t.Parallel()

		assert := NewGomegaWithT(t)

		list := &commands.List{
			Target: commands.Target{ServerURL: endpoint, Username: "admin", Password: "secret"},
			Stdout: &bytes.Buffer{},
		}
		assert.Expect(list.Run(slog.Default())).To(Succeed())
	})
}

func TestLocalCreate(t *testing.T) {
	t.Parallel()

	assert := NewGomegaWithT(t)

	target := commands.Target{
		Local:   true,
		Storage: "sqlite://" + filepath.Join(t.TempDir(), "environments.db"),
		Engine:  "memory",
	}
	name := containerName()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	create := &commands.Create{
		Target: target,
		Name:   name,
		Image:  "busybox:latest",
		Stdout: stdout,
		Stderr: stderr,
	}
	assert.Expect(create.Run(slog.Default())).To(Succeed())
	assert.Expect(stdout.String()).To(ContainSubstring(name))

	// the in-process engine does not outlive the command, so the record is dropped
	stdout.Reset()
	list := &commands.List{Target: target, Output: "json", Stdout: stdout}
	assert.Expect(list.Run(slog.Default())).To(Succeed())

	var containers provision.ContainerList
	assert.Expect(json.Unmarshal(stdout.Bytes(), &containers)).To(Succeed())
	assert.Expect(containers.ContainersCount).To(Equal(0))

	stdout.Reset()
	remove := &commands.Delete{Target: target, Name: name, Stdout: stdout}
	assert.Expect(remove.Run(slog.Default())).To(Succeed())
	assert.Expect(stdout.String()).To(ContainSubstring(name))
}

func TestLocalInvalidRequest(t *testing.T) {
	t.Parallel()

	assert := NewGomegaWithT(t)

	create := &commands.Create{
		Target: commands.Target{
			Local:   true,
			Storage: "sqlite://" + filepath.Join(t.TempDir(), "environments.db"),
			Engine:  "memory",
		},
		Name:       "-invalid",
		Image:      "busybox:latest",
		NoProgress: true,
		Stdout:     &bytes.Buffer{},
	}

	err := create.Run(slog.Default())
	assert.Expect(errors.Is(err, provision.ErrInvalidRequest)).To(BeTrue())
}

func TestUnknownDrivers(t *testing.T) {
	t.Parallel()

	t.Run("storage", func(t *testing.T) {
		t.Parallel()

		assert := NewGomegaWithT(t)

		list := &commands.List{
			Target: commands.Target{Local: true, Storage: "nope://", Engine: "memory"},
			Stdout: &bytes.Buffer{},
		}
		assert.Expect(errors.Is(list.Run(slog.Default()), errors.ErrUnsupported)).To(BeTrue())
	})

	t.Run("engine", func(t *testing.T) {
		t.Parallel()

		assert := NewGomegaWithT(t)

		list := &commands.List{
			Target: commands.Target{Local: true, Storage: "sqlite://" + filepath.Join(t.TempDir(), "environments.db"), Engine: "nope"},
			Stdout: &bytes.Buffer{},
		}
		assert.Expect(errors.Is(list.Run(slog.Default()), errors.ErrUnsupported)).To(BeTrue())
	})

	t.Run("server", func(t *testing.T) {
		t.Parallel()

		assert := NewGomegaWithT(t)

		command := &commands.Server{Storage: "nope://", Engine: "memory"}
		assert.Expect(errors.Is(command.Run(slog.Default()), errors.ErrUnsupported)).To(BeTrue())
	})
}
