// Package provision creates containers in an engine and records them in a
// store, and reconciles those records against what the engine reports.
//
// Engine and store are not coordinated: a failure after the engine has
// created a container leaves it running without a record. Such orphans are
// logged and left for an out-of-band sweep.
package provision

import (
	"log/slog"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/jtarchie/environments/engine"
	"github.com/jtarchie/environments/storage"
)

// containerName is the grammar the Docker engine accepts for names.
var containerName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

type Option func(*Service)

// WithProgress observes every pull progress event of Create.
func WithProgress(observe func(engine.PullProgress)) Option {
	return func(s *Service) {
		s.progress = observe
	}
}

type Service struct {
	engine   engine.Driver
	store    storage.Driver
	logger   *slog.Logger
	validate *validator.Validate
	progress func(engine.PullProgress)
}

func New(engineDriver engine.Driver, store storage.Driver, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("container_name", func(fl validator.FieldLevel) bool {
		return containerName.MatchString(fl.Field().String())
	})

	service := &Service{
		engine:   engineDriver,
		store:    store,
		logger:   logger.WithGroup("provision"),
		validate: validate,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}
