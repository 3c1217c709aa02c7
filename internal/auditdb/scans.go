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

const selectScans = `
    SELECT scan_id, audit_id, chain_x_product_id, created_at, updated_at,
           retail_price, sale_price, scan_data, scan_type_id,
           product_name, brand_name
    FROM scans`

// AddScan records a new product observation for the audit.
func (d *DB) AddScan(ctx context.Context, audit *Audit, scan *Scan) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return faults.State("no audit for scan")
	}

	now := time.Now()
	scan.ID = uuid.New().String()
	scan.AuditID = audit.ID
	scan.CreatedAt = now
	scan.UpdatedAt = now

	_, err := d.execWithRetry(ctx, `
        INSERT INTO scans (
            scan_id, audit_id, chain_x_product_id, created_at, updated_at,
            retail_price, sale_price, scan_data, scan_type_id,
            product_name, brand_name
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.AuditID, scan.ProductID,
		timefmt.Format(scan.CreatedAt), timefmt.Format(scan.UpdatedAt),
		sqlitedb.NullableFloat(scan.RetailPrice), sqlitedb.NullableFloat(scan.SalePrice),
		nullableStringPtr(scan.ScanData), scan.ScanTypeID,
		scan.ProductName, scan.BrandName,
	)
	if err != nil {
		return faults.Storage("failed to add scan to database", err)
	}
	return nil
}

// UpdateScan rewrites a scan's mutable fields and bumps its update time.
func (d *DB) UpdateScan(ctx context.Context, scan *Scan) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if scan == nil || scan.ID == "" {
		return faults.State("scan has not been persisted")
	}

	scan.UpdatedAt = time.Now()
	res, err := d.execWithRetry(ctx, `
        UPDATE scans
        SET updated_at = ?, retail_price = ?, sale_price = ?, scan_data = ?,
            scan_type_id = ?, product_name = ?, brand_name = ?
        WHERE scan_id = ?`,
		timefmt.Format(scan.UpdatedAt),
		sqlitedb.NullableFloat(scan.RetailPrice), sqlitedb.NullableFloat(scan.SalePrice),
		nullableStringPtr(scan.ScanData), scan.ScanTypeID,
		scan.ProductName, scan.BrandName,
		scan.ID,
	)
	if err != nil {
		return faults.Storage("update scan", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return faults.NotFound("scan not found")
	}
	return nil
}

// GetScan returns the audit's scan for a product, or nil when the product
// was never scanned.
func (d *DB) GetScan(ctx context.Context, audit *Audit, productID int) (*Scan, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return nil, nil
	}
	row := d.db.QueryRowContext(ctx,
		selectScans+` WHERE audit_id = ? AND chain_x_product_id = ? ORDER BY updated_at DESC LIMIT 1`,
		audit.ID, productID,
	)
	scan, err := scanScan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Storage("query scan", err)
	}
	return scan, nil
}

// Scans returns every scan in the audit ordered by product id.
func (d *DB) Scans(ctx context.Context, audit *Audit) ([]Scan, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return nil, nil
	}
	rows, err := d.db.QueryContext(ctx,
		selectScans+` WHERE audit_id = ? ORDER BY chain_x_product_id, created_at`,
		audit.ID,
	)
	if err != nil {
		return nil, faults.Storage("query scans", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		scan, err := scanScan(rows)
		if err != nil {
			return nil, faults.Storage("scan scan row", err)
		}
		scans = append(scans, *scan)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("iterate scans", err)
	}
	return scans, nil
}

func scanScan(row rowScanner) (*Scan, error) {
	var (
		scan                   Scan
		createdAt, updatedAt   string
		retailPrice, salePrice sql.NullFloat64
		scanData               sql.NullString
	)
	err := row.Scan(
		&scan.ID, &scan.AuditID, &scan.ProductID, &createdAt, &updatedAt,
		&retailPrice, &salePrice, &scanData, &scan.ScanTypeID,
		&scan.ProductName, &scan.BrandName,
	)
	if err != nil {
		return nil, err
	}

	if scan.CreatedAt, err = timefmt.Parse(createdAt); err != nil {
		return nil, err
	}
	if scan.UpdatedAt, err = timefmt.Parse(updatedAt); err != nil {
		return nil, err
	}
	scan.RetailPrice = nullableFloatPtr(retailPrice)
	scan.SalePrice = nullableFloatPtr(salePrice)
	if scanData.Valid {
		value := scanData.String
		scan.ScanData = &value
	}
	return &scan, nil
}

func nullableStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
