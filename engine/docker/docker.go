package docker

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/docker/cli/cli/connhelper"
	"github.com/docker/docker/client"
	"github.com/jtarchie/environments/engine"
)

type Docker struct {
	client client.APIClient
	logger *slog.Logger
}

// NewDocker connects to the engine named by the DSN "host" parameter,
// falling back to DOCKER_HOST and then the client defaults.
func NewDocker(dsn string, logger *slog.Logger) (engine.Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	params, err := engine.ParseParams(dsn)
	if err != nil {
		return nil, err
	}

	var clientOpts []client.Opt

	dockerHost := engine.GetParam(params, "host", "DOCKER_HOST", "")

	switch {
	case strings.HasPrefix(dockerHost, "ssh://"):
		helper, err := connhelper.GetConnectionHelper(dockerHost)
		if err != nil {
			return nil, fmt.Errorf("failed to get connection helper: %w", err)
		}

		httpClient := &http.Client{
			Transport: &http.Transport{
				DialContext: helper.Dialer,
			},
		}

		clientOpts = append(clientOpts,
			client.WithHTTPClient(httpClient),
			client.WithHost(helper.Host),
			client.WithDialContext(helper.Dialer),
			client.WithAPIVersionNegotiation(),
		)
	case dockerHost != "":
		clientOpts = append(clientOpts, client.WithHost(dockerHost), client.WithAPIVersionNegotiation())
	default:
		clientOpts = append(clientOpts, client.FromEnv, client.WithAPIVersionNegotiation())
	}

	cli, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return New(cli, logger), nil
}

// New wraps an existing API client.
func New(cli client.APIClient, logger *slog.Logger) *Docker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Docker{
		client: cli,
		logger: logger.WithGroup("engine.docker"),
	}
}

func (d *Docker) Name() string {
	return "docker"
}

func (d *Docker) Close() error {
	err := d.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close docker client: %w", err)
	}

	return nil
}

func init() {
	engine.Add("docker", NewDocker)
}

var _ engine.Driver = &Docker{}
