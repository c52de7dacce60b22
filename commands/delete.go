package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jtarchie/environments/bridge"
	"github.com/samber/lo"
)

// Delete removes the record of a container. The engine container is left alone.
type Delete struct {
	Target `embed:""`

	Name string `arg:"" help:"Name of the container to delete"`

	Stdout io.Writer `kong:"-"`
}

func (c *Delete) Run(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.WithGroup("container.delete").With("name", c.Name)
	stdout := lo.CoalesceOrEmpty[io.Writer](c.Stdout, os.Stdout)

	handle := bridge.NewHandle(context.Background())
	defer handle.Close()

	target, closeTarget, err := c.open(handle, logger)
	if err != nil {
		return err
	}
	defer closeTarget()

	logger.Info("container.delete")

	container, err := target.Delete(c.Name)
	if err != nil {
		return fmt.Errorf("could not delete container %q: %w", c.Name, err)
	}

	return writeContainer(stdout, container)
}
