package reconcile_test

import (
	"context"
	"reflect"
	"testing"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/reconcile"
	"fieldaudit/internal/testsupport"
)

const testUserID = 7

func newAudit(t *testing.T, db *auditdb.DB) *auditdb.Audit {
	t.Helper()
	audit, err := db.StartAudit(context.Background(), testUserID, 100, "Uptown #0042", 1, nil, nil)
	if err != nil {
		t.Fatalf("StartAudit: %v", err)
	}
	return audit
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ChainXProductID: 1, Name: "Apple Chips", BrandName: "Acme"},
		{ChainXProductID: 2, Name: "Cola", BrandName: "Acme"},
		{ChainXProductID: 3, Name: "Zesty Salsa", BrandName: "Acme"},
	}
}

func statuses(reports []auditdb.Report) map[int]auditdb.ReorderStatus {
	out := make(map[int]auditdb.ReorderStatus, len(reports))
	for _, report := range reports {
		out[report.ProductID] = report.Status
	}
	return out
}

func TestAllReportsNilProductsReturnsExplicitOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()
	audit := newAudit(t, db)

	if err := db.AddScan(ctx, audit, &auditdb.Scan{ProductID: 1}); err != nil {
		t.Fatalf("AddScan: %v", err)
	}
	if err := db.AddReport(ctx, audit, &auditdb.Report{ProductID: 2, Status: auditdb.ReorderVoid}); err != nil {
		t.Fatalf("AddReport: %v", err)
	}

	reports, err := reconcile.AllReports(ctx, db, audit, nil)
	if err != nil {
		t.Fatalf("AllReports: %v", err)
	}
	if len(reports) != 1 || reports[0].ProductID != 2 {
		t.Fatalf("expected only the explicit report, got %+v", reports)
	}
}

func TestAllReportsPrecedence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()
	audit := newAudit(t, db)

	// Product 1: scanned only -> implicit In Stock.
	if err := db.AddScan(ctx, audit, &auditdb.Scan{ProductID: 1}); err != nil {
		t.Fatalf("AddScan: %v", err)
	}
	// Product 2: scanned AND explicitly voided -> explicit wins.
	if err := db.AddScan(ctx, audit, &auditdb.Scan{ProductID: 2}); err != nil {
		t.Fatalf("AddScan: %v", err)
	}
	if err := db.AddReport(ctx, audit, &auditdb.Report{ProductID: 2, Status: auditdb.ReorderVoid}); err != nil {
		t.Fatalf("AddReport: %v", err)
	}
	// Product 3: untouched -> implicit Out of Stock.

	reports, err := reconcile.AllReports(ctx, db, audit, testProducts())
	if err != nil {
		t.Fatalf("AllReports: %v", err)
	}

	want := map[int]auditdb.ReorderStatus{
		1: auditdb.ReorderInStock,
		2: auditdb.ReorderVoid,
		3: auditdb.ReorderOutOfStock,
	}
	if got := statuses(reports); !reflect.DeepEqual(got, want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}

	// Totality: no product may come back as None.
	for _, report := range reports {
		if report.Status == auditdb.ReorderNone {
			t.Fatalf("report %d has status None", report.ProductID)
		}
	}

	// Synthesized In Stock entries point at their scan.
	for _, report := range reports {
		if report.ProductID == 1 && (report.ScanID == nil || *report.ScanID == "") {
			t.Fatalf("implicit in-stock report lost its scan link: %+v", report)
		}
	}
}

func TestAllReportsIdempotentAndOrdered(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()
	audit := newAudit(t, db)

	if err := db.AddScan(ctx, audit, &auditdb.Scan{ProductID: 3}); err != nil {
		t.Fatalf("AddScan: %v", err)
	}
	// Duplicate scans of the same product synthesize one report.
	if err := db.AddScan(ctx, audit, &auditdb.Scan{ProductID: 3}); err != nil {
		t.Fatalf("AddScan: %v", err)
	}

	first, err := reconcile.AllReports(ctx, db, audit, testProducts())
	if err != nil {
		t.Fatalf("AllReports: %v", err)
	}
	second, err := reconcile.AllReports(ctx, db, audit, testProducts())
	if err != nil {
		t.Fatalf("AllReports again: %v", err)
	}

	if len(first) != 3 {
		t.Fatalf("expected one report per product, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ProductID >= first[i].ProductID {
			t.Fatalf("reports not ordered by product id: %+v", first)
		}
	}
	if !reflect.DeepEqual(statuses(first), statuses(second)) {
		t.Fatal("reconciliation is not idempotent")
	}
}

func TestAllReportsEmptyAuditAllOutOfStock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenAuditDB(t, cfg)
	ctx := context.Background()
	audit := newAudit(t, db)

	reports, err := reconcile.AllReports(ctx, db, audit, testProducts())
	if err != nil {
		t.Fatalf("AllReports: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	for _, report := range reports {
		if report.Status != auditdb.ReorderOutOfStock {
			t.Fatalf("untouched product should be out of stock: %+v", report)
		}
	}
}
