package auditdb

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"fieldaudit/internal/faults"
	"fieldaudit/internal/sqlitedb"
	"fieldaudit/internal/timefmt"
)

// SelectedConditions returns the condition set recorded for a product, or
// nil when none was recorded.
func (d *DB) SelectedConditions(ctx context.Context, audit *Audit, productID int) (*SelectedConditions, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return nil, nil
	}
	row := d.db.QueryRowContext(ctx, `
        SELECT record_id, audit_id, chain_x_product_id, condition_ids,
               created_at, updated_at
        FROM conditions WHERE audit_id = ? AND chain_x_product_id = ? LIMIT 1`,
		audit.ID, productID,
	)

	var (
		record               SelectedConditions
		encoded              string
		createdAt, updatedAt string
	)
	err := row.Scan(&record.ID, &record.AuditID, &record.ProductID, &encoded, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Storage("query conditions", err)
	}

	if record.ConditionIDs, err = decodeConditionIDs(encoded); err != nil {
		return nil, err
	}
	if record.CreatedAt, err = timefmt.Parse(createdAt); err != nil {
		return nil, err
	}
	if record.UpdatedAt, err = timefmt.Parse(updatedAt); err != nil {
		return nil, err
	}
	return &record, nil
}

// SetSelectedConditions replaces the condition set for a product. An empty
// or nil set removes the record entirely.
func (d *DB) SetSelectedConditions(ctx context.Context, audit *Audit, productID int, ids []int) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return faults.State("no audit for conditions")
	}

	if len(ids) == 0 {
		_, err := d.execWithRetry(ctx,
			`DELETE FROM conditions WHERE audit_id = ? AND chain_x_product_id = ?`,
			audit.ID, productID,
		)
		if err != nil {
			return faults.Storage("clear conditions", err)
		}
		return nil
	}

	normalized := normalizeConditionIDs(ids)
	now := timefmt.Format(time.Now())

	existing, err := d.SelectedConditions(ctx, audit, productID)
	if err != nil {
		return err
	}
	if existing != nil {
		_, err := d.execWithRetry(ctx, `
            UPDATE conditions SET condition_ids = ?, updated_at = ?
            WHERE record_id = ?`,
			encodeConditionIDs(normalized), now, existing.ID,
		)
		if err != nil {
			return faults.Storage("update conditions", err)
		}
		return nil
	}

	_, err = d.execWithRetry(ctx, `
        INSERT INTO conditions (
            record_id, audit_id, chain_x_product_id, condition_ids,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), audit.ID, productID, encodeConditionIDs(normalized), now, now,
	)
	if err != nil {
		return faults.Storage("insert conditions", err)
	}
	return nil
}

// AllSelectedConditions returns every condition record in the audit ordered
// by product id.
func (d *DB) AllSelectedConditions(ctx context.Context, audit *Audit) ([]SelectedConditions, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return nil, nil
	}
	rows, err := d.db.QueryContext(ctx, `
        SELECT record_id, audit_id, chain_x_product_id, condition_ids,
               created_at, updated_at
        FROM conditions WHERE audit_id = ? ORDER BY chain_x_product_id`,
		audit.ID,
	)
	if err != nil {
		return nil, faults.Storage("query conditions", err)
	}
	defer rows.Close()

	var records []SelectedConditions
	for rows.Next() {
		var (
			record               SelectedConditions
			encoded              string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&record.ID, &record.AuditID, &record.ProductID, &encoded, &createdAt, &updatedAt); err != nil {
			return nil, faults.Storage("scan conditions", err)
		}
		if record.ConditionIDs, err = decodeConditionIDs(encoded); err != nil {
			return nil, err
		}
		if record.CreatedAt, err = timefmt.Parse(createdAt); err != nil {
			return nil, err
		}
		if record.UpdatedAt, err = timefmt.Parse(updatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("iterate conditions", err)
	}
	return records, nil
}

// normalizeConditionIDs sorts and dedupes so equal sets store identically.
func normalizeConditionIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
