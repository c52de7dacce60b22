package server

import (
	"errors"
	"net/http"

	"github.com/jtarchie/environments/provision"
	"github.com/jtarchie/environments/storage"
	"github.com/labstack/echo/v4"
)

const (
	KindInvalidRequest  = "invalid_request"
	KindEngine          = "engine"
	KindWorkflowAborted = "workflow_aborted"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func errorResponse(ctx echo.Context, err error) error {
	status, kind := classify(err)

	return ctx.JSON(status, ErrorResponse{
		Error: err.Error(),
		Kind:  kind,
	})
}

func classify(err error) (int, string) {
	var (
		engineErr *provision.EngineError
		storeErr  *provision.StoreError
	)

	switch {
	case errors.Is(err, provision.ErrInvalidRequest):
		return http.StatusBadRequest, KindInvalidRequest
	case errors.As(err, &engineErr):
		return http.StatusBadGateway, KindEngine
	case errors.As(err, &storeErr):
		kind := storeErr.Kind()

		switch kind {
		case storage.KindNotFound:
			return http.StatusNotFound, kind.String()
		case storage.KindUniqueViolation:
			return http.StatusConflict, kind.String()
		case storage.KindModelViolation:
			return http.StatusUnprocessableEntity, kind.String()
		default:
			return http.StatusInternalServerError, kind.String()
		}
	case errors.Is(err, provision.ErrWorkflowAborted):
		return http.StatusInternalServerError, KindWorkflowAborted
	default:
		return http.StatusInternalServerError, storage.KindUnhandled.String()
	}
}
