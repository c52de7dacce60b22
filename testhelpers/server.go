package testhelpers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/onsi/gomega"
	"github.com/phayes/freeport"
)

type Server struct {
	server   *http.Server
	endpoint string
}

// StartServer serves handler on a random free port and waits until its
// /health endpoint answers. The server is stopped when the test ends.
func StartServer(t *testing.T, handler http.Handler) *Server {
	t.Helper()

	assert := gomega.NewGomegaWithT(t)

	port, err := freeport.GetFreePort()
	assert.Expect(err).NotTo(gomega.HaveOccurred())

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	assert.Expect(err).NotTo(gomega.HaveOccurred())

	server := &Server{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		endpoint: fmt.Sprintf("http://127.0.0.1:%d", port),
	}

	go func() {
		err := server.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("server stopped: %v", err)
		}
	}()

	t.Cleanup(server.Stop)

	assert.Eventually(func() bool {
		response, err := http.Get(server.endpoint + "/health")
		if err != nil {
			return false
		}

		defer func() { _ = response.Body.Close() }()

		return response.StatusCode == http.StatusOK
	}, "10s", "50ms").Should(gomega.BeTrue(), "server should start")

	return server
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = s.server.Shutdown(ctx)
}

// Endpoint returns the base URL of the server.
func (s *Server) Endpoint() string {
	return s.endpoint
}
