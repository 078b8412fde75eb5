package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/verproxy/internal/http/middleware"
	"github.com/tbourn/verproxy/internal/services"
)

// Extern godoc
// @ID          extern
// @Summary     Relay external JSON
// @Description Fetches a fixed external JSON document and returns it re-serialized.
// @Description The upstream status code is not relayed; any valid JSON body yields 200.
// @Tags        Extern
// @Produce     json
// @Success     200  {object}  object
// @Failure     500  {object}  handlers.ErrorResponse  "error communicating with external service / error decoding JSON payload"
// @Router      /extern [get]
func (h *Handlers) Extern(c *gin.Context) {
	var client services.HTTPDoer
	if hc := middleware.HTTPClientFrom(c); hc != nil {
		client = hc
	}

	v, err := h.externSvc.Fetch(c.Request.Context(), client)
	if err != nil {
		FailError(c, err)
		return
	}
	relay(c, v)
}
