package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultHSTSMaxAge applies when HSTS is on but no max-age was configured.
const DefaultHSTSMaxAge = 180 * 24 * time.Hour

// HSTS controls Strict-Transport-Security. It is only sent on requests that
// arrived over TLS, directly or via a proxy setting X-Forwarded-Proto.
type HSTS struct {
	Enabled bool
	MaxAge  time.Duration
}

func (h HSTS) header() string {
	if !h.Enabled {
		return ""
	}
	age := h.MaxAge
	if age <= 0 {
		age = DefaultHSTSMaxAge
	}
	return "max-age=" + strconv.FormatInt(int64(age/time.Second), 10) + "; includeSubDomains"
}

// APIHeaders sets the response headers every reply of this service carries:
// content sniffing off and no caching, since each answer reflects live
// database or upstream state. Browser framing and feature policies are left
// out; nothing here renders in a browser.
func APIHeaders(hsts HSTS) gin.HandlerFunc {
	sts := hsts.header()
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Cache-Control", "no-store")
		if sts != "" && overTLS(c.Request) {
			h.Set("Strict-Transport-Security", sts)
		}
		c.Next()
	}
}

func overTLS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
