package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/verproxy/internal/apperr"
	"github.com/tbourn/verproxy/internal/repo"
)

// VersionReply carries the database server's self-reported version.
type VersionReply struct {
	Version string `json:"version" example:"8.0.36"`
}

// VersionService answers the database version query.
type VersionService struct{}

// Version runs the dialect's version query on conn, which must be pinned to
// the request's leased connection. A query yielding no rows reports "".
// Any failure is logged and returned as apperr.Database.
func (VersionService) Version(ctx context.Context, conn *gorm.DB) (VersionReply, error) {
	if conn == nil {
		return VersionReply{}, apperr.Erase(ctx, apperr.Database, ErrNoConnection, "database version")
	}
	v, err := repo.DatabaseVersion(ctx, conn)
	if err != nil {
		return VersionReply{}, apperr.Erase(ctx, apperr.Database, err, "database version")
	}
	return VersionReply{Version: v}, nil
}
