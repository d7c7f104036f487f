// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabfare/internal/maps"
	"cabfare/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeFareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrTripTypeUnavailable), errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, pricing.ErrRulesNotFound):
		writeError(c, http.StatusServiceUnavailable, "pricing rules unavailable")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
