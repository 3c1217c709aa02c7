package auditdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/testsupport"
)

const testUserID = 7

func startAudit(t *testing.T, db *auditdb.DB) *auditdb.Audit {
	t.Helper()
	audit, err := db.StartAudit(context.Background(), testUserID, 100, "Uptown #0042", 1, nil, nil)
	if err != nil {
		t.Fatalf("StartAudit: %v", err)
	}
	return audit
}

func completeAudit(t *testing.T, db *auditdb.DB, audit *auditdb.Audit) {
	t.Helper()
	if err := db.CompleteAudit(context.Background(), audit, nil, nil, nil); err != nil {
		t.Fatalf("CompleteAudit: %v", err)
	}
}

func TestStartAuditConflictsWhileOpen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()

	first := startAudit(t, db)

	if _, err := db.StartAudit(ctx, testUserID, 200, "Airport", 1, nil, nil); !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Another user is unaffected.
	if _, err := db.StartAudit(ctx, testUserID+1, 200, "Airport", 1, nil, nil); err != nil {
		t.Fatalf("second user blocked: %v", err)
	}

	// Completing the first audit releases the invariant.
	completeAudit(t, db, first)
	if _, err := db.StartAudit(ctx, testUserID, 200, "Airport", 1, nil, nil); err != nil {
		t.Fatalf("start after complete: %v", err)
	}
}

func TestResumeAuditFindsOpenAudit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()

	if resumed, err := db.ResumeAudit(ctx, testUserID); err != nil || resumed != nil {
		t.Fatalf("expected no open audit, got %+v, %v", resumed, err)
	}

	started := startAudit(t, db)
	resumed, err := db.ResumeAudit(ctx, testUserID)
	if err != nil {
		t.Fatalf("ResumeAudit: %v", err)
	}
	if resumed == nil || resumed.ID != started.ID {
		t.Fatalf("resumed wrong audit: %+v", resumed)
	}
	if resumed.StoreDescription != "Uptown #0042" {
		t.Fatalf("snapshot lost: %q", resumed.StoreDescription)
	}
}

func TestCompleteAndReopenStateMachine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()

	audit := startAudit(t, db)

	// Reopen before completion is a state error.
	if err := db.ReopenAudit(ctx, audit); !errors.Is(err, faults.ErrState) {
		t.Fatalf("expected state error, got %v", err)
	}

	lat := 35.2
	end := time.Date(2026, 8, 1, 17, 0, 0, 0, time.UTC)
	if err := db.CompleteAudit(ctx, audit, &lat, nil, &end); err != nil {
		t.Fatalf("CompleteAudit: %v", err)
	}
	if !audit.Completed() || !audit.EndedAt.Equal(end) {
		t.Fatalf("end fields not applied: %+v", audit)
	}

	// Completing twice is a state error.
	if err := db.CompleteAudit(ctx, audit, nil, nil, nil); !errors.Is(err, faults.ErrState) {
		t.Fatalf("expected state error, got %v", err)
	}

	if err := db.ReopenAudit(ctx, audit); err != nil {
		t.Fatalf("ReopenAudit: %v", err)
	}
	if audit.Completed() || audit.LatitudeAtEnd != nil {
		t.Fatalf("end fields not cleared: %+v", audit)
	}

	// Double reopen fails.
	if err := db.ReopenAudit(ctx, audit); !errors.Is(err, faults.ErrState) {
		t.Fatalf("expected state error on double reopen, got %v", err)
	}

	// The reopened audit is resumable again.
	resumed, err := db.ResumeAudit(ctx, testUserID)
	if err != nil || resumed == nil || resumed.ID != audit.ID {
		t.Fatalf("reopened audit not resumable: %+v, %v", resumed, err)
	}
}

func TestCompletedAuditsAndCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()

	first := startAudit(t, db)
	completeAudit(t, db, first)
	second := startAudit(t, db)
	completeAudit(t, db, second)
	startAudit(t, db) // open, must not count

	completed, err := db.CompletedAudits(ctx, testUserID)
	if err != nil {
		t.Fatalf("CompletedAudits: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed audits, got %d", len(completed))
	}
	if completed[0].ID != first.ID {
		t.Fatal("completed audits must be ordered oldest first")
	}

	count, err := db.CompletedCount(ctx, testUserID)
	if err != nil {
		t.Fatalf("CompletedCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestDeleteAuditRemovesChildren(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()

	audit := startAudit(t, db)
	scan := &auditdb.Scan{ProductID: 7, ProductName: "Zesty Salsa"}
	if err := db.AddScan(ctx, audit, scan); err != nil {
		t.Fatalf("AddScan: %v", err)
	}
	report := &auditdb.Report{ProductID: 7, Status: auditdb.ReorderInStock}
	if err := db.AddReport(ctx, audit, report); err != nil {
		t.Fatalf("AddReport: %v", err)
	}
	if err := db.SetSelectedConditions(ctx, audit, 7, []int{1, 2}); err != nil {
		t.Fatalf("SetSelectedConditions: %v", err)
	}
	notes, err := db.GetNotes(ctx, audit)
	if err != nil {
		t.Fatalf("GetNotes: %v", err)
	}
	if err := db.UpdateNotes(ctx, notes, "internal", "for the store"); err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}
	completeAudit(t, db, audit)

	if err := db.DeleteAudit(ctx, audit); err != nil {
		t.Fatalf("DeleteAudit: %v", err)
	}

	if count, err := db.CompletedCount(ctx, testUserID); err != nil || count != 0 {
		t.Fatalf("audit not deleted: count=%d err=%v", count, err)
	}
	if got, err := db.GetScan(ctx, audit, 7); err != nil || got != nil {
		t.Fatalf("scan survived delete: %+v, %v", got, err)
	}
	if got, err := db.GetReport(ctx, audit, 7); err != nil || got != nil {
		t.Fatalf("report survived delete: %+v, %v", got, err)
	}
	if got, err := db.SelectedConditions(ctx, audit, 7); err != nil || got != nil {
		t.Fatalf("conditions survived delete: %+v, %v", got, err)
	}
}
