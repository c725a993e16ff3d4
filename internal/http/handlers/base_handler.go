// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/modules/carpool"
	"carpool/internal/modules/plans"
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

func writeCarpoolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, carpool.ErrNoVehicles),
		errors.Is(err, carpool.ErrBadCapacity),
		errors.Is(err, carpool.ErrBadPassengerCount),
		errors.Is(err, carpool.ErrMissingID),
		errors.Is(err, carpool.ErrUnplaceableBooking):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writePlansError(c *gin.Context, err error) {
	if errors.Is(err, plans.ErrNotFound) {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	writeError(c, http.StatusInternalServerError, "internal error")
}
