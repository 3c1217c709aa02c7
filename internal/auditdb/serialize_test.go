package auditdb_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/session"
	"fieldaudit/internal/testsupport"
)

func TestSerializeAuditAssemblesDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()

	audit := startAudit(t, db)

	retail := 4.99
	raw := "012345678905"
	scan := &auditdb.Scan{ProductID: 7, RetailPrice: &retail, ScanData: &raw, ScanTypeID: 1, ProductName: "Zesty Salsa", BrandName: "Acme"}
	if err := db.AddScan(ctx, audit, scan); err != nil {
		t.Fatalf("AddScan: %v", err)
	}
	report := &auditdb.Report{ScanID: &scan.ID, ProductID: 7, Status: auditdb.ReorderInStock}
	if err := db.AddReport(ctx, audit, report); err != nil {
		t.Fatalf("AddReport: %v", err)
	}
	if err := db.SetSelectedConditions(ctx, audit, 7, []int{2, 4}); err != nil {
		t.Fatalf("SetSelectedConditions: %v", err)
	}
	notes, err := db.GetNotes(ctx, audit)
	if err != nil {
		t.Fatalf("GetNotes: %v", err)
	}
	if err := db.UpdateNotes(ctx, notes, "internal note", "store note"); err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}
	completeAudit(t, db, audit)

	user := session.User{ID: testUserID, ClientID: 3}
	payload, err := db.SerializeAudit(ctx, audit, user)
	if err != nil {
		t.Fatalf("SerializeAudit: %v", err)
	}

	if payload.ID != audit.ID || payload.StoreID != audit.StoreID {
		t.Fatalf("identity fields wrong: %+v", payload)
	}
	if payload.AuditEndedAt == "" {
		t.Fatal("completed audit must carry an end timestamp")
	}
	if payload.User.UserID != testUserID || payload.User.ClientID != 3 {
		t.Fatalf("user block wrong: %+v", payload.User)
	}
	if len(payload.Scans) != 1 || payload.Scans[0].ChainXProductID != 7 {
		t.Fatalf("scans block wrong: %+v", payload.Scans)
	}
	if len(payload.Reports) != 1 || payload.Reports[0].ReorderStatusID != 1 {
		t.Fatalf("reports block wrong: %+v", payload.Reports)
	}
	if payload.Reports[0].ScanID == nil || *payload.Reports[0].ScanID != scan.ID {
		t.Fatalf("report scan link lost: %+v", payload.Reports[0])
	}
	if len(payload.SKUConditions) != 1 || len(payload.SKUConditions[0].SKUConditionIDs) != 2 {
		t.Fatalf("conditions block wrong: %+v", payload.SKUConditions)
	}
	if payload.Notes != "internal note" || payload.StoreNote != "store note" {
		t.Fatalf("notes wrong: %q, %q", payload.Notes, payload.StoreNote)
	}

	// The JSON field names form the wire contract.
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	for _, field := range []string{
		`"storeId"`, `"auditStartedAt"`, `"auditEndedAt"`, `"userId"`, `"clientId"`,
		`"scanId"`, `"chainXProductId"`, `"reorderStatusId"`, `"skuConditionIds"`,
		`"audit_store_note"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Fatalf("payload missing field %s: %s", field, data)
		}
	}
}

func TestSerializeAuditEmptyChildren(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()

	audit := startAudit(t, db)
	completeAudit(t, db, audit)

	payload, err := db.SerializeAudit(ctx, audit, session.User{ID: testUserID, ClientID: 3})
	if err != nil {
		t.Fatalf("SerializeAudit: %v", err)
	}
	if payload.Scans == nil || payload.Reports == nil || payload.SKUConditions == nil {
		t.Fatal("empty child collections must serialize as [], not null")
	}
	if len(payload.Scans) != 0 || len(payload.Reports) != 0 {
		t.Fatalf("expected empty collections: %+v", payload)
	}
}
