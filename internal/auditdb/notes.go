package auditdb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"fieldaudit/internal/faults"
	"fieldaudit/internal/sqlitedb"
)

// GetNotes returns the audit's notes, or an unpersisted empty value when
// none were recorded yet.
func (d *DB) GetNotes(ctx context.Context, audit *Audit) (*Notes, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	if audit == nil {
		return nil, faults.State("no audit for notes")
	}
	row := d.db.QueryRowContext(ctx,
		`SELECT note_id, audit_id, contents, store_text FROM notes WHERE audit_id = ?`,
		audit.ID,
	)

	var notes Notes
	err := row.Scan(&notes.ID, &notes.AuditID, &notes.Contents, &notes.StoreText)
	if err == sql.ErrNoRows {
		return &Notes{AuditID: audit.ID}, nil
	}
	if err != nil {
		return nil, faults.Storage("query notes", err)
	}
	return &notes, nil
}

// UpdateNotes persists the note text, inserting on first write.
func (d *DB) UpdateNotes(ctx context.Context, notes *Notes, contents, storeText string) error {
	ctx = sqlitedb.EnsureContext(ctx)
	if notes == nil || notes.AuditID == "" {
		return faults.State("notes are not bound to an audit")
	}

	notes.Contents = contents
	notes.StoreText = storeText

	if notes.ID == "" {
		notes.ID = uuid.New().String()
		_, err := d.execWithRetry(ctx,
			`INSERT INTO notes (note_id, audit_id, contents, store_text) VALUES (?, ?, ?, ?)`,
			notes.ID, notes.AuditID, notes.Contents, notes.StoreText,
		)
		if err != nil {
			notes.ID = ""
			return faults.Storage("insert notes", err)
		}
		return nil
	}

	_, err := d.execWithRetry(ctx,
		`UPDATE notes SET contents = ?, store_text = ? WHERE note_id = ?`,
		notes.Contents, notes.StoreText, notes.ID,
	)
	if err != nil {
		return faults.Storage("update notes", err)
	}
	return nil
}
