// Package lifecycle drives the audit state machine for the signed-in user:
// start, resume, complete, reopen, and post-upload delete, plus the scan and
// report flows that depend on client settings.
package lifecycle

import (
	"context"
	"log/slog"
	"strings"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/logging"
	"fieldaudit/internal/session"
)

// Manager binds the audit flows to one authenticated user.
type Manager struct {
	db      *auditdb.DB
	catalog *catalog.Catalog
	sess    *session.Session
	logger  *slog.Logger
}

// NewManager wires a manager over the stores and session.
func NewManager(db *auditdb.DB, cat *catalog.Catalog, sess *session.Session, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		db:      db,
		catalog: cat,
		sess:    sess,
		logger:  logging.WithComponent(logger, "lifecycle"),
	}
}

// Start opens an audit at the given store, snapshotting the store
// description. The store must exist in the catalog; an open audit for the
// user is a conflict.
func (m *Manager) Start(ctx context.Context, storeID, auditTypeID int, lat, lon *float64) (*auditdb.Audit, error) {
	store, err := m.catalog.Store(ctx, storeID)
	if err != nil {
		return nil, err
	}

	audit, err := m.db.StartAudit(ctx, m.sess.User.ID, store.ID, store.Description(), auditTypeID, lat, lon)
	if err != nil {
		return nil, err
	}
	m.logger.Info("audit started",
		logging.String("audit_id", audit.ID),
		logging.Int("store_id", store.ID),
		logging.String("store", store.Description()))
	return audit, nil
}

// Resume returns the user's open audit, or nil when there is none.
func (m *Manager) Resume(ctx context.Context) (*auditdb.Audit, error) {
	return m.db.ResumeAudit(ctx, m.sess.User.ID)
}

// Complete ends the user's open audit. When the no_notes_warning setting is
// on and the audit has no notes, missingNotes is reported so the caller can
// warn before committing.
func (m *Manager) Complete(ctx context.Context, lat, lon *float64, force bool) (audit *auditdb.Audit, missingNotes bool, err error) {
	audit, err = m.Resume(ctx)
	if err != nil {
		return nil, false, err
	}
	if audit == nil {
		return nil, false, faults.State("no audit in progress")
	}

	if !force && m.sess.SettingBool(session.SettingNoNotesWarning) {
		notes, err := m.db.GetNotes(ctx, audit)
		if err != nil {
			return nil, false, err
		}
		if strings.TrimSpace(notes.Contents) == "" && strings.TrimSpace(notes.StoreText) == "" {
			return audit, true, nil
		}
	}

	if err := m.db.CompleteAudit(ctx, audit, lat, lon, nil); err != nil {
		return nil, false, err
	}
	m.logger.Info("audit completed", logging.String("audit_id", audit.ID))
	return audit, false, nil
}

// Reopen returns a completed audit to the open state. It refuses while the
// user has a different audit open.
func (m *Manager) Reopen(ctx context.Context, auditID string) (*auditdb.Audit, error) {
	open, err := m.Resume(ctx)
	if err != nil {
		return nil, err
	}
	if open != nil && open.ID != auditID {
		return nil, faults.Conflict("there is currently an audit in progress")
	}

	audit, err := m.db.GetAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if audit.UserID != m.sess.User.ID {
		return nil, faults.NotFound("audit not found")
	}
	if err := m.db.ReopenAudit(ctx, audit); err != nil {
		return nil, err
	}
	m.logger.Info("audit reopened", logging.String("audit_id", audit.ID))
	return audit, nil
}

// Delete removes a completed audit. Open audits cannot be deleted; complete
// or upload them instead.
func (m *Manager) Delete(ctx context.Context, auditID string) error {
	audit, err := m.db.GetAudit(ctx, auditID)
	if err != nil {
		return err
	}
	if audit.UserID != m.sess.User.ID {
		return faults.NotFound("audit not found")
	}
	if !audit.Completed() {
		return faults.State("cannot delete an open audit")
	}
	if err := m.db.DeleteAudit(ctx, audit); err != nil {
		return err
	}
	m.logger.Info("audit deleted", logging.String("audit_id", audit.ID))
	return nil
}

// RecordScan stores a scan against the open audit. When the
// scan_forces_in_stock setting is on and the product has no explicit
// report, an In Stock report is recorded alongside the scan.
func (m *Manager) RecordScan(ctx context.Context, scan *auditdb.Scan) (*auditdb.Audit, error) {
	audit, err := m.Resume(ctx)
	if err != nil {
		return nil, err
	}
	if audit == nil {
		return nil, faults.State("no audit in progress")
	}

	if err := m.db.AddScan(ctx, audit, scan); err != nil {
		return nil, err
	}

	if m.sess.SettingBool(session.SettingScanForcesInStock) {
		existing, err := m.db.GetReport(ctx, audit, scan.ProductID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			report := &auditdb.Report{
				ScanID:    &scan.ID,
				ProductID: scan.ProductID,
				Status:    auditdb.ReorderInStock,
			}
			if err := m.db.AddReport(ctx, audit, report); err != nil {
				return nil, err
			}
		}
	}
	return audit, nil
}
