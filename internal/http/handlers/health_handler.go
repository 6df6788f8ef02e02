package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database" example:"ok"`
	Scheduler string `json:"scheduler" example:"enabled"`
}

// Health godoc
// @ID          health
// @Summary     Liveness and dependency check
// @Description Reports row store reachability and whether the daily scheduler is enabled. Returns 503 when the database is unreachable.
// @Tags        Health
// @Produce     json
//
// @Success     200  {object}  handlers.HealthResponse
// @Failure     503  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok", Scheduler: "disabled"}
	if h.Scheduler != nil {
		st := h.Scheduler.Status()
		switch {
		case st.Running:
			resp.Scheduler = "running"
		case st.Enabled:
			resp.Scheduler = "enabled"
		}
	}
	status := http.StatusOK
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}
