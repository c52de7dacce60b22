package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jtarchie/environments/bridge"
	"github.com/jtarchie/environments/engine"
	"github.com/jtarchie/environments/provision"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
)

type Create struct {
	Target `embed:""`

	Name       string `arg:"" help:"Name of the container"`
	Image      string `arg:"" help:"Image to create the container from"`
	NoProgress bool   `help:"Do not show image pull progress (only with --local)"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

func (c *Create) Run(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.WithGroup("container.create").With("name", c.Name, "image", c.Image)

	stdout := lo.CoalesceOrEmpty[io.Writer](c.Stdout, os.Stdout)
	stderr := lo.CoalesceOrEmpty[io.Writer](c.Stderr, os.Stderr)

	handle := bridge.NewHandle(context.Background())
	defer handle.Close()

	var opts []provision.Option

	if c.Local && !c.NoProgress {
		bar := newPullBar(stderr, c.Image)
		defer func() { _ = bar.Finish() }()

		opts = append(opts, provision.WithProgress(func(event engine.PullProgress) {
			if event.Total > 0 {
				bar.ChangeMax64(event.Total)
				_ = bar.Set64(event.Current)
			}

			bar.Describe(fmt.Sprintf("%s %s", c.Image, event.Status))
		}))
	}

	target, closeTarget, err := c.open(handle, logger, opts...)
	if err != nil {
		return err
	}
	defer closeTarget()

	logger.Info("container.create")

	container, err := target.Create(c.Name, c.Image)
	if err != nil {
		return fmt.Errorf("could not create container %q: %w", c.Name, err)
	}

	return writeContainer(stdout, container)
}

func newPullBar(w io.Writer, image string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(image),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}
