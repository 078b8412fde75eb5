package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/verproxy/internal/services"
)

// ReadyResponse is returned by /ready.
type ReadyResponse struct {
	Status string `json:"status" example:"ready"`
}

// Health godoc
// @ID          health
// @Summary     Liveness probe
// @Description Always returns {"status":"alive"}; touches no dependency.
// @Tags        Health
// @Produce     json
// @Success     200  {object}  services.HealthReply
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, services.Health())
}

// Ready godoc
// @ID          ready
// @Summary     Readiness probe
// @Description Pings the database pool.
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.ReadyResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Database unreachable"
// @Router      /ready [get]
func (h *Handlers) Ready(c *gin.Context) {
	if h.probe != nil {
		if err := h.probe.Ping(c.Request.Context()); err != nil {
			FailError(c, err)
			return
		}
	}
	ok(c, http.StatusOK, ReadyResponse{Status: "ready"})
}
