package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jtarchie/environments/bridge"
	"github.com/jtarchie/environments/client"
	"github.com/jtarchie/environments/provision"
)

// Target selects where a command is sent: a running server, or drivers
// opened in this process when Local is set.
type Target struct {
	ServerURL string        `default:"http://localhost:8080"     env:"ENVIRONMENTS_SERVER_URL"             help:"URL of the environments server" short:"s"`
	Username  string        `env:"ENVIRONMENTS_BASIC_AUTH_USERNAME" help:"Username for basic auth"`
	Password  string        `env:"ENVIRONMENTS_BASIC_AUTH_PASSWORD" help:"Password for basic auth"`
	Timeout   time.Duration `default:"5m"                        help:"Timeout for requests to the server"`
	Local     bool          `help:"Use local storage and engine drivers instead of a server"`
	Storage   string        `default:"sqlite://environments.db"  env:"ENVIRONMENTS_STORAGE"                help:"Storage DSN used with --local"`
	Engine    string        `default:"docker"                    env:"ENVIRONMENTS_ENGINE"                 help:"Engine DSN used with --local"`
}

type provisioner interface {
	Create(name, image string) (*provision.Container, error)
	List() (*provision.ContainerList, error)
	Delete(name string) (*provision.Container, error)
}

// open returns a provisioner whose calls run on handle. The returned
// function releases any drivers that were opened.
func (t *Target) open(handle *bridge.Handle, logger *slog.Logger, opts ...provision.Option) (provisioner, func(), error) {
	if !t.Local {
		logger.Debug("target.remote", "url", redactDSN(t.ServerURL))

		return &remote{
			handle: handle,
			client: client.New(
				t.ServerURL,
				client.WithBasicAuth(t.Username, t.Password),
				client.WithTimeout(t.Timeout),
			),
		}, func() {}, nil
	}

	logger.Debug("target.local", "storage", redactDSN(t.Storage), "engine", redactDSN(t.Engine))

	drivers, err := openDrivers(t.Storage, t.Engine, logger)
	if err != nil {
		return nil, nil, err
	}

	service := provision.New(drivers.engine, drivers.store, logger, opts...)

	return bridge.NewProvisioner(handle, service), drivers.Close, nil
}

type remote struct {
	handle *bridge.Handle
	client *client.Client
}

func (r *remote) Create(name, image string) (*provision.Container, error) {
	return bridge.Run(r.handle, func(ctx context.Context) (*provision.Container, error) {
		return r.client.CreateContainer(ctx, name, image)
	})
}

func (r *remote) List() (*provision.ContainerList, error) {
	return bridge.Run(r.handle, r.client.ListContainers)
}

func (r *remote) Delete(name string) (*provision.Container, error) {
	return bridge.Run(r.handle, func(ctx context.Context) (*provision.Container, error) {
		return r.client.DeleteContainer(ctx, name)
	})
}

func writeContainer(w io.Writer, container *provision.Container) error {
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		container.ID,
		container.Name,
		container.Image,
		container.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("could not write container: %w", err)
	}

	return nil
}
