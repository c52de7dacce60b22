package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/jtarchie/environments/bridge"
	"github.com/samber/lo"
)

type List struct {
	Target `embed:""`

	Output string `default:"table" enum:"table,json,yaml" help:"Output format (table, json, yaml)" short:"o"`

	Stdout io.Writer `kong:"-"`
}

func (c *List) Run(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.WithGroup("container.list")
	stdout := lo.CoalesceOrEmpty[io.Writer](c.Stdout, os.Stdout)

	handle := bridge.NewHandle(context.Background())
	defer handle.Close()

	target, closeTarget, err := c.open(handle, logger)
	if err != nil {
		return err
	}
	defer closeTarget()

	list, err := target.List()
	if err != nil {
		return fmt.Errorf("could not list containers: %w", err)
	}

	logger.Debug("container.list", "count", list.ContainersCount)

	switch c.Output {
	case "json":
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")

		err = encoder.Encode(list)
		if err != nil {
			return fmt.Errorf("could not encode containers: %w", err)
		}
	case "yaml":
		contents, err := yaml.Marshal(list)
		if err != nil {
			return fmt.Errorf("could not encode containers: %w", err)
		}

		_, err = stdout.Write(contents)
		if err != nil {
			return fmt.Errorf("could not write containers: %w", err)
		}
	default:
		for _, container := range list.Containers {
			err = writeContainer(stdout, &container)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
