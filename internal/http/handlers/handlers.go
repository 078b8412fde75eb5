// Package handlers exposes the HTTP endpoints:
//
//   - GET /health     liveness, no dependencies
//   - GET /ready      readiness, pings the database
//   - GET /mysql_ver  database server version over a leased connection
//   - GET /extern     relays a fixed external JSON document
//
// Handlers are transport-thin. Resources arrive through the Gin context
// (see middleware.InjectConn and middleware.InjectHTTPClient); results and
// failures are translated by the helpers in response.go.
package handlers

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/verproxy/internal/services"
)

// VersionService reports the database server version over conn.
type VersionService interface {
	Version(ctx context.Context, conn *gorm.DB) (services.VersionReply, error)
}

// ExternService fetches and decodes the external document with client.
type ExternService interface {
	Fetch(ctx context.Context, client services.HTTPDoer) (any, error)
}

// ReadinessProbe checks that the database can serve requests.
type ReadinessProbe interface {
	Ping(ctx context.Context) error
}

// Handlers groups the HTTP endpoints and the services behind them.
type Handlers struct {
	versionSvc VersionService
	externSvc  ExternService
	probe      ReadinessProbe
}

// New constructs Handlers bound to the given services. probe may be nil, in
// which case /ready behaves like /health.
func New(versionSvc VersionService, externSvc ExternService, probe ReadinessProbe) *Handlers {
	return &Handlers{versionSvc: versionSvc, externSvc: externSvc, probe: probe}
}
