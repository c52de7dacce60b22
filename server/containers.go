package server

import (
	"net/http"

	"github.com/jtarchie/environments/provision"
	"github.com/labstack/echo/v4"
)

func registerContainerRoutes(api *echo.Group, service *provision.Service) {
	// GET /api/containers - reconciled list of containers
	api.GET("/containers", func(ctx echo.Context) error {
		list, err := service.List(ctx.Request().Context())
		if err != nil {
			return errorResponse(ctx, err)
		}

		return ctx.JSON(http.StatusOK, list)
	})

	// POST /api/containers - provision a new container
	api.POST("/containers", func(ctx echo.Context) error {
		var req provision.CreateRequest

		err := ctx.Bind(&req)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "invalid request body",
				Kind:  KindInvalidRequest,
			})
		}

		container, err := service.Create(ctx.Request().Context(), req)
		if err != nil {
			return errorResponse(ctx, err)
		}

		return ctx.JSON(http.StatusCreated, container)
	})

	api.GET("/containers/:name", func(ctx echo.Context) error {
		container, err := service.Find(ctx.Request().Context(), ctx.Param("name"))
		if err != nil {
			return errorResponse(ctx, err)
		}

		return ctx.JSON(http.StatusOK, container)
	})

	api.DELETE("/containers/:name", func(ctx echo.Context) error {
		container, err := service.Delete(ctx.Request().Context(), ctx.Param("name"))
		if err != nil {
			return errorResponse(ctx, err)
		}

		return ctx.JSON(http.StatusOK, container)
	})
}
