package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/verproxy/internal/http/middleware"
)

// DatabaseVersion godoc
// @ID          databaseVersion
// @Summary     Database server version
// @Description Runs the version query on a connection leased for this request.
// @Tags        Database
// @Produce     json
// @Success     200  {object}  services.VersionReply
// @Failure     500  {object}  handlers.ErrorResponse  "database error"
// @Router      /mysql_ver [get]
func (h *Handlers) DatabaseVersion(c *gin.Context) {
	var conn *gorm.DB
	if lease := middleware.LeaseFrom(c); lease != nil {
		conn = lease.DB()
	}

	reply, err := h.versionSvc.Version(c.Request.Context(), conn)
	if err != nil {
		FailError(c, err)
		return
	}
	ok(c, http.StatusOK, reply)
}
