// README: Carpool handlers: plan computation and archived-plan lookup.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"carpool/internal/modules/carpool"
	"carpool/internal/modules/plans"
)

type CarpoolHandler struct {
	carpool *carpool.Service
	plans   *plans.Service
}

// NewCarpoolHandler wires the handler. plans may be nil when no archive is
// configured; computed plans are then returned without being stored.
func NewCarpoolHandler(svc *carpool.Service, plans *plans.Service) *CarpoolHandler {
	return &CarpoolHandler{carpool: svc, plans: plans}
}

// Calculate handles POST /api/v1/carpool.
func (h *CarpoolHandler) Calculate(c *gin.Context) {
	var req carpool.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	resp, err := h.carpool.Calculate(c.Request.Context(), req)
	if err != nil {
		writeCarpoolError(c, err)
		return
	}
	if h.plans != nil {
		if _, err := h.plans.Archive(c.Request.Context(), resp); err != nil {
			// The caller still gets the plan; archiving is not on the
			// critical path.
			log.Warn().Err(err).Str("date", resp.Date).Msg("failed to archive plan")
		}
	}
	writeJSON(c, http.StatusOK, resp)
}

// LatestPlan handles GET /api/v1/plans?date=MM/DD/YYYY.
func (h *CarpoolHandler) LatestPlan(c *gin.Context) {
	if h.plans == nil {
		writeError(c, http.StatusNotFound, "plan archive not configured")
		return
	}
	date := c.Query("date")
	if date == "" {
		writeError(c, http.StatusBadRequest, "date query parameter required")
		return
	}
	resp, err := h.plans.Latest(c.Request.Context(), date)
	if err != nil {
		writePlansError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}
