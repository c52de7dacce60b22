package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jtarchie/environments/provision"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
)

// RouterOptions configures the router.
type RouterOptions struct {
	BasicAuthUsername string
	BasicAuthPassword string
}

// Router wraps echo.Echo and serves the containers API.
type Router struct {
	*echo.Echo
}

// newBasicAuthMiddleware guards the API with a single static credential.
// Without both a username and a password the API is open.
func newBasicAuthMiddleware(username, password string) echo.MiddlewareFunc {
	if username == "" || password == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "environments",
		Validator: func(u, p string, _ echo.Context) (bool, error) {
			validUser := subtle.ConstantTimeCompare([]byte(u), []byte(username)) == 1
			validPassword := subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1

			return validUser && validPassword, nil
		},
	})
}

func NewRouter(logger *slog.Logger, service *provision.Service, opts RouterOptions) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	router.Use(slogecho.NewWithConfig(logger, slogecho.Config{
		WithRequestID: true,
	}))
	router.Use(middleware.Recover())

	router.GET("/health", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "OK")
	})

	api := router.Group("/api")
	api.Use(newBasicAuthMiddleware(opts.BasicAuthUsername, opts.BasicAuthPassword))
	registerContainerRoutes(api, service)

	return &Router{Echo: router}
}
