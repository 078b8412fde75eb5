package observability

import (
	"database/sql"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// RegisterDBStats exports database/sql pool statistics (open, in-use, idle,
// wait count and duration) as go_sql_* metrics labelled db_name=name.
// Registering the same name twice is not an error.
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, name string) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	err := reg.Register(collectors.NewDBStatsCollector(db, name))
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return nil
	}
	return err
}
