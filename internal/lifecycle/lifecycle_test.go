package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/lifecycle"
	"fieldaudit/internal/session"
	"fieldaudit/internal/testsupport"
)

func newManager(t *testing.T, settings map[string]string) (*lifecycle.Manager, *auditdb.DB) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	db := testsupport.MustOpenAuditDB(t, cfg)

	stores := []catalog.Store{{
		ClientID: 1, ChainID: 10, ChainName: "Harris Market", ChainCode: "HM",
		ID: 100, Name: "Uptown", Identifier: "0042",
	}}
	if err := cat.ReplaceAll(context.Background(), stores, nil); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	sess := &session.Session{
		Token:    "tok",
		User:     session.User{ID: 7, ClientID: 1},
		Settings: settings,
	}
	return lifecycle.NewManager(db, cat, sess, nil), db
}

func TestStartSnapshotsStoreDescription(t *testing.T) {
	mgr, _ := newManager(t, nil)
	ctx := context.Background()

	audit, err := mgr.Start(ctx, 100, 1, nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if audit.StoreDescription != "Uptown #0042" {
		t.Fatalf("description not snapshotted: %q", audit.StoreDescription)
	}

	// Unknown stores are refused before anything is written.
	if _, err := mgr.Start(ctx, 999, 1, nil, nil); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteWarnsOnMissingNotes(t *testing.T) {
	mgr, db := newManager(t, map[string]string{session.SettingNoNotesWarning: "true"})
	ctx := context.Background()

	if _, err := mgr.Start(ctx, 100, 1, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	audit, missingNotes, err := mgr.Complete(ctx, nil, nil, false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !missingNotes {
		t.Fatal("expected missing-notes warning")
	}
	if audit.Completed() {
		t.Fatal("audit must stay open while warning")
	}

	// Adding notes clears the warning path.
	notes, err := db.GetNotes(ctx, audit)
	if err != nil {
		t.Fatalf("GetNotes: %v", err)
	}
	if err := db.UpdateNotes(ctx, notes, "all good", ""); err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}
	audit, missingNotes, err = mgr.Complete(ctx, nil, nil, false)
	if err != nil || missingNotes {
		t.Fatalf("Complete after notes: missing=%v err=%v", missingNotes, err)
	}
	if !audit.Completed() {
		t.Fatal("audit should be completed")
	}
}

func TestCompleteForceSkipsWarning(t *testing.T) {
	mgr, _ := newManager(t, map[string]string{session.SettingNoNotesWarning: "true"})
	ctx := context.Background()

	if _, err := mgr.Start(ctx, 100, 1, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	audit, missingNotes, err := mgr.Complete(ctx, nil, nil, true)
	if err != nil || missingNotes {
		t.Fatalf("forced complete: missing=%v err=%v", missingNotes, err)
	}
	if !audit.Completed() {
		t.Fatal("audit should be completed")
	}
}

func TestReopenRefusesWhileAnotherAuditOpen(t *testing.T) {
	mgr, _ := newManager(t, nil)
	ctx := context.Background()

	first, err := mgr.Start(ctx, 100, 1, nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := mgr.Complete(ctx, nil, nil, true); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := mgr.Start(ctx, 100, 1, nil, nil); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if _, err := mgr.Reopen(ctx, first.ID); !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteRequiresCompletion(t *testing.T) {
	mgr, _ := newManager(t, nil)
	ctx := context.Background()

	audit, err := mgr.Start(ctx, 100, 1, nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := mgr.Delete(ctx, audit.ID); !errors.Is(err, faults.ErrState) {
		t.Fatalf("expected state error, got %v", err)
	}
	if _, _, err := mgr.Complete(ctx, nil, nil, true); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := mgr.Delete(ctx, audit.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := mgr.Reopen(ctx, audit.ID); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("deleted audit should be gone, got %v", err)
	}
}

func TestRecordScanForcesInStock(t *testing.T) {
	mgr, db := newManager(t, map[string]string{session.SettingScanForcesInStock: "true"})
	ctx := context.Background()

	if _, err := mgr.Start(ctx, 100, 1, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	scan := &auditdb.Scan{ProductID: 7, ProductName: "Zesty Salsa"}
	audit, err := mgr.RecordScan(ctx, scan)
	if err != nil {
		t.Fatalf("RecordScan: %v", err)
	}

	report, err := db.GetReport(ctx, audit, 7)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report == nil || report.Status != auditdb.ReorderInStock {
		t.Fatalf("expected forced in-stock report, got %+v", report)
	}
	if report.ScanID == nil || *report.ScanID != scan.ID {
		t.Fatalf("report not linked to scan: %+v", report)
	}

	// An explicit report is never overwritten by later scans.
	report.Status = auditdb.ReorderVoid
	if err := db.UpdateReport(ctx, audit, report); err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}
	if _, err := mgr.RecordScan(ctx, &auditdb.Scan{ProductID: 7}); err != nil {
		t.Fatalf("second RecordScan: %v", err)
	}
	after, err := db.GetReport(ctx, audit, 7)
	if err != nil {
		t.Fatalf("GetReport after rescan: %v", err)
	}
	if after.Status != auditdb.ReorderVoid {
		t.Fatalf("explicit report overwritten: %+v", after)
	}
}

func TestRecordScanWithoutOpenAudit(t *testing.T) {
	mgr, _ := newManager(t, nil)
	if _, err := mgr.RecordScan(context.Background(), &auditdb.Scan{ProductID: 7}); !errors.Is(err, faults.ErrState) {
		t.Fatalf("expected state error, got %v", err)
	}
}
