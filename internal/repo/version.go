package repo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// VersionQuery returns the fixed scalar query reporting the server version
// for a dialect.
func VersionQuery(d Dialect) string {
	if d == DialectSQLite {
		return "SELECT sqlite_version()"
	}
	return "SELECT version()"
}

// DatabaseVersion runs the dialect's version query on db and returns the
// first column of the first row. Zero rows yield "".
func DatabaseVersion(ctx context.Context, db *gorm.DB) (string, error) {
	return FirstString(ctx, db, VersionQuery(DialectOf(db)))
}

// FirstString runs query and reads the first column of the first row as a
// string. It returns "" when the query yields no rows; a NULL column also
// reads as "".
func FirstString(ctx context.Context, db *gorm.DB, query string) (string, error) {
	rows, err := db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}
	var v sql.NullString
	if err := rows.Scan(&v); err != nil {
		return "", err
	}
	return v.String, rows.Err()
}
