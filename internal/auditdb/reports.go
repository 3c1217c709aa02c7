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

const selectReports = `
    SELECT report_id, audit_id, scan_id, chain_x_product_id,
           reorder_status_id, created_at, updated_at
    FROM reports`

// AddReport persists a new explicit reorder decision.
func (d *DB) AddReport(ctx context.Context, audit *Audit, report *Report) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return faults.State("no audit for report")
	}

	now := time.Now()
	report.ID = uuid.New().String()
	report.AuditID = audit.ID
	report.CreatedAt = now
	report.UpdatedAt = now

	_, err := d.execWithRetry(ctx, `
        INSERT INTO reports (
            report_id, audit_id, scan_id, chain_x_product_id,
            reorder_status_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.AuditID, nullableStringPtr(report.ScanID), report.ProductID,
		int(report.Status), timefmt.Format(report.CreatedAt), timefmt.Format(report.UpdatedAt),
	)
	if err != nil {
		return faults.Storage("insert report", err)
	}
	return nil
}

// UpdateReport rewrites a report; a report without an id is inserted
// instead, so reconciliation output can be persisted directly.
func (d *DB) UpdateReport(ctx context.Context, audit *Audit, report *Report) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if report == nil {
		return faults.State("no report to update")
	}
	if report.ID == "" {
		return d.AddReport(ctx, audit, report)
	}

	report.UpdatedAt = time.Now()
	res, err := d.execWithRetry(ctx, `
        UPDATE reports
        SET scan_id = ?, reorder_status_id = ?, updated_at = ?
        WHERE report_id = ?`,
		nullableStringPtr(report.ScanID), int(report.Status),
		timefmt.Format(report.UpdatedAt), report.ID,
	)
	if err != nil {
		return faults.Storage("update report", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return faults.NotFound("report not found")
	}
	return nil
}

// GetReport returns the audit's explicit report for a product, or nil when
// none was recorded.
func (d *DB) GetReport(ctx context.Context, audit *Audit, productID int) (*Report, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return nil, nil
	}
	row := d.db.QueryRowContext(ctx,
		selectReports+` WHERE audit_id = ? AND chain_x_product_id = ? LIMIT 1`,
		audit.ID, productID,
	)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Storage("query report", err)
	}
	return report, nil
}

// Reports returns the audit's explicit reports ordered by product id.
func (d *DB) Reports(ctx context.Context, audit *Audit) ([]Report, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return nil, nil
	}
	rows, err := d.db.QueryContext(ctx,
		selectReports+` WHERE audit_id = ? ORDER BY chain_x_product_id`,
		audit.ID,
	)
	if err != nil {
		return nil, faults.Storage("query reports", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, faults.Storage("scan report", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("iterate reports", err)
	}
	return reports, nil
}

func scanReport(row rowScanner) (*Report, error) {
	var (
		report               Report
		scanID               sql.NullString
		status               int
		createdAt, updatedAt string
	)
	err := row.Scan(
		&report.ID, &report.AuditID, &scanID, &report.ProductID,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	report.Status = ReorderStatus(status)
	if scanID.Valid {
		value := scanID.String
		report.ScanID = &value
	}
	if report.CreatedAt, err = timefmt.Parse(createdAt); err != nil {
		return nil, err
	}
	if report.UpdatedAt, err = timefmt.Parse(updatedAt); err != nil {
		return nil, err
	}
	return &report, nil
}
