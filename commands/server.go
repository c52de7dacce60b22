package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jtarchie/environments/engine"
	"github.com/jtarchie/environments/provision"
	"github.com/jtarchie/environments/server"
	"github.com/jtarchie/environments/storage"
)

type Server struct {
	Port              int           `default:"8080"                     env:"ENVIRONMENTS_PORT"                help:"Port to run the server on"`
	Storage           string        `default:"sqlite://environments.db" env:"ENVIRONMENTS_STORAGE"             help:"Storage DSN (e.g., 'sqlite://environments.db', 'memory://')"`
	Engine            string        `default:"docker"                   env:"ENVIRONMENTS_ENGINE"              help:"Engine DSN (e.g., 'docker', 'docker://?host=ssh://user@host', 'memory')"`
	BasicAuthUsername string        `env:"ENVIRONMENTS_BASIC_AUTH_USERNAME" help:"Username for basic auth on the API"`
	BasicAuthPassword string        `env:"ENVIRONMENTS_BASIC_AUTH_PASSWORD" help:"Password for basic auth on the API"`
	ShutdownTimeout   time.Duration `default:"10s"                      help:"How long to wait for in-flight requests on shutdown"`
}

func (c *Server) Run(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.WithGroup("server.run")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	drivers, err := openDrivers(c.Storage, c.Engine, logger)
	if err != nil {
		return err
	}
	defer drivers.Close()

	service := provision.New(drivers.engine, drivers.store, logger)
	router := server.NewRouter(logger, service, server.RouterOptions{
		BasicAuthUsername: c.BasicAuthUsername,
		BasicAuthPassword: c.BasicAuthPassword,
	})

	errs := make(chan error, 1)

	go func() {
		logger.Info("server.start", "port", c.Port, "storage", redactDSN(c.Storage), "engine", redactDSN(c.Engine))

		errs <- router.Start(fmt.Sprintf(":%d", c.Port))
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not start server: %w", err)
		}

		return nil
	case <-ctx.Done():
		logger.Info("server.shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	err = router.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("could not shutdown server: %w", err)
	}

	return nil
}

type drivers struct {
	store  storage.Driver
	engine engine.Driver
}

func (d *drivers) Close() {
	_ = d.engine.Close()
	_ = d.store.Close()
}

func openDrivers(storageDSN, engineDSN string, logger *slog.Logger) (*drivers, error) {
	store, err := storage.Open(storageDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", redactDSN(storageDSN), err)
	}

	engineDriver, err := engine.Open(engineDSN, logger)
	if err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("could not open %q: %w", redactDSN(engineDSN), err)
	}

	return &drivers{store: store, engine: engineDriver}, nil
}
