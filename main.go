package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/jtarchie/environments/commands"
	_ "github.com/jtarchie/environments/engine/docker"
	_ "github.com/jtarchie/environments/engine/memory"
	_ "github.com/jtarchie/environments/storage/memory"
	_ "github.com/jtarchie/environments/storage/sqlite"
	"github.com/lmittmann/tint"
)

type CLI struct {
	Server commands.Server `cmd:"" help:"Run the containers API server"`
	Create commands.Create `cmd:"" help:"Create a container from an image"`
	List   commands.List   `cmd:"" help:"List containers known to both the store and the engine"`
	Delete commands.Delete `cmd:"" help:"Delete the record of a container"`

	LogLevel  slog.Level `default:"info"                                  help:"Set the log level (debug, info, warn, error)"`
	AddSource bool       `help:"Add source code location to log messages"`
	LogFormat string     `default:"text"                                  enum:"text,json"                                    help:"Set the log format (text, json)"`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("environments"),
		kong.Description("Provision containers and reconcile them with their records."),
	)

	if cli.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     cli.LogLevel,
			AddSource: cli.AddSource,
		})))
	} else {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:     cli.LogLevel,
			AddSource: cli.AddSource,
		})))
	}

	err := ctx.Run(slog.Default())
	ctx.FatalIfErrorf(err)
}
