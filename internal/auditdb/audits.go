package auditdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"fieldaudit/internal/faults"
	"fieldaudit/internal/sqlitedb"
	"fieldaudit/internal/timefmt"
)

const selectAudits = `
    SELECT audit_id, user_id, store_id, store_description, audit_type_id,
           started_at, ended_at, latitude_at_start, longitude_at_start,
           latitude_at_end, longitude_at_end
    FROM audits`

// StartAudit opens a new audit for the user, refusing while another of the
// user's audits is still open.
func (d *DB) StartAudit(ctx context.Context, userID, storeID int, storeDescription string, auditTypeID int, lat, lon *float64) (*Audit, error) {
	ctx = sqlitedb.EnsureContext(ctx)

	open, err := d.ResumeAudit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, faults.Conflict("there is currently an audit in progress")
	}

	audit := &Audit{
		ID:               uuid.New().String(),
		UserID:           userID,
		StoreID:          storeID,
		StoreDescription: storeDescription,
		AuditTypeID:      auditTypeID,
		StartedAt:        time.Now(),
		LatitudeAtStart:  lat,
		LongitudeAtStart: lon,
	}

	_, err = d.execWithRetry(ctx, `
        INSERT INTO audits (
            audit_id, user_id, store_id, store_description, audit_type_id,
            started_at, latitude_at_start, longitude_at_start
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		audit.ID, audit.UserID, audit.StoreID, audit.StoreDescription, audit.AuditTypeID,
		timefmt.Format(audit.StartedAt),
		sqlitedb.NullableFloat(lat), sqlitedb.NullableFloat(lon),
	)
	if err != nil {
		return nil, faults.Storage("insert audit", err)
	}
	return audit, nil
}

// ResumeAudit returns the user's open audit, or nil when none exists.
func (d *DB) ResumeAudit(ctx context.Context, userID int) (*Audit, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	row := d.db.QueryRowContext(ctx,
		selectAudits+` WHERE user_id = ? AND ended_at IS NULL LIMIT 1`, userID)
	audit, err := scanAudit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Storage("query open audit", err)
	}
	return audit, nil
}

// GetAudit fetches an audit by id.
func (d *DB) GetAudit(ctx context.Context, id string) (*Audit, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	row := d.db.QueryRowContext(ctx, selectAudits+` WHERE audit_id = ?`, id)
	audit, err := scanAudit(row)
	if err == sql.ErrNoRows {
		return nil, faults.NotFound("audit not found")
	}
	if err != nil {
		return nil, faults.Storage("query audit", err)
	}
	return audit, nil
}

// CompleteAudit closes an open audit, recording the end time and location.
// A nil endedAt defaults to now.
func (d *DB) CompleteAudit(ctx context.Context, audit *Audit, lat, lon *float64, endedAt *time.Time) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return faults.State("no audit to complete")
	}
	if audit.Completed() {
		return faults.State("audit already completed")
	}

	end := time.Now()
	if endedAt != nil {
		end = *endedAt
	}

	_, err := d.execWithRetry(ctx, `
        UPDATE audits
        SET ended_at = ?, latitude_at_end = ?, longitude_at_end = ?
        WHERE audit_id = ?`,
		timefmt.Format(end), sqlitedb.NullableFloat(lat), sqlitedb.NullableFloat(lon),
		audit.ID,
	)
	if err != nil {
		return faults.Storage("complete audit", err)
	}

	audit.EndedAt = &end
	audit.LatitudeAtEnd = lat
	audit.LongitudeAtEnd = lon
	return nil
}

// ReopenAudit clears the end fields of a completed audit so work can
// continue.
func (d *DB) ReopenAudit(ctx context.Context, audit *Audit) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil || !audit.Completed() {
		return faults.State("audit is not completed")
	}

	_, err := d.execWithRetry(ctx, `
        UPDATE audits
        SET ended_at = NULL, latitude_at_end = NULL, longitude_at_end = NULL
        WHERE audit_id = ?`,
		audit.ID,
	)
	if err != nil {
		return faults.Storage("reopen audit", err)
	}

	audit.EndedAt = nil
	audit.LatitudeAtEnd = nil
	audit.LongitudeAtEnd = nil
	return nil
}

// CompletedAudits returns the user's completed audits awaiting upload,
// oldest first.
func (d *DB) CompletedAudits(ctx context.Context, userID int) ([]Audit, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	rows, err := d.db.QueryContext(ctx,
		selectAudits+` WHERE user_id = ? AND ended_at IS NOT NULL ORDER BY started_at, audit_id`,
		userID,
	)
	if err != nil {
		return nil, faults.Storage("query completed audits", err)
	}
	defer rows.Close()

	var audits []Audit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, faults.Storage("scan audit", err)
		}
		audits = append(audits, *audit)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("iterate audits", err)
	}
	return audits, nil
}

// CompletedCount reports how many of the user's audits await upload.
func (d *DB) CompletedCount(ctx context.Context, userID int) (int, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM audits WHERE user_id = ? AND ended_at IS NOT NULL`, userID,
	).Scan(&count)
	if err != nil {
		return 0, faults.Storage("count completed audits", err)
	}
	return count, nil
}

// DeleteAudit removes the audit and all of its children in one transaction.
func (d *DB) DeleteAudit(ctx context.Context, audit *Audit) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return faults.State("no audit to delete")
	}
	return sqlitedb.RetryOnBusy(ctx, func() error {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return faults.Storage("begin audit delete", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, table := range []string{"notes", "conditions", "reports", "scans", "audits"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE audit_id = ?", audit.ID); err != nil {
				return faults.Storage("delete from "+table, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return faults.Storage("commit audit delete", err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (*Audit, error) {
	var (
		audit              Audit
		startedAt          string
		endedAt            sql.NullString
		latStart, lonStart sql.NullFloat64
		latEnd, lonEnd     sql.NullFloat64
	)
	err := row.Scan(
		&audit.ID, &audit.UserID, &audit.StoreID, &audit.StoreDescription,
		&audit.AuditTypeID, &startedAt, &endedAt,
		&latStart, &lonStart, &latEnd, &lonEnd,
	)
	if err != nil {
		return nil, err
	}

	started, err := timefmt.Parse(startedAt)
	if err != nil {
		return nil, err
	}
	audit.StartedAt = started

	if endedAt.Valid {
		ended, err := timefmt.ParsePtr(endedAt.String)
		if err != nil {
			return nil, err
		}
		audit.EndedAt = ended
	}
	audit.LatitudeAtStart = nullableFloatPtr(latStart)
	audit.LongitudeAtStart = nullableFloatPtr(lonStart)
	audit.LatitudeAtEnd = nullableFloatPtr(latEnd)
	audit.LongitudeAtEnd = nullableFloatPtr(lonEnd)
	return &audit, nil
}

func nullableFloatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}
