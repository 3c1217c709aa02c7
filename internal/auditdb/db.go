package auditdb

import (
	"context"
	"database/sql"
	_ "embed"
	"strconv"
	"strings"

	"fieldaudit/internal/config"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the table
// layout changes; open audits must be completed and uploaded first.
const schemaVersion = 1

// DB manages audit session persistence backed by SQLite.
type DB struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the audit database.
func Open(cfg *config.Config) (*DB, error) {
	path := cfg.AuditDatabasePath()
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, faults.Storage("open audit database", err)
	}
	if err := sqlitedb.InitSchema(context.Background(), db, schemaSQL, schemaVersion); err != nil {
		_ = db.Close()
		return nil, faults.Storage("initialize audit schema", err)
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return sqlitedb.ExecWithRetry(ctx, d.db, query, args...)
}

func normalizeStatusInput(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ReplaceAll(value, "_", "")
	return value
}

// encodeConditionIDs renders the set as sorted CSV for storage.
func encodeConditionIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

func decodeConditionIDs(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, faults.Serialization("decode condition ids", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
