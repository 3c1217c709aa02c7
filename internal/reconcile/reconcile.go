package reconcile

import (
	"context"
	"sort"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
)

// AllReports returns the audit's effective reports. With a nil product list
// only the explicit reports are returned. With a product list supplied,
// scans without an explicit report synthesize In Stock entries and catalog
// products without either synthesize Out of Stock entries, so every product
// carries a definite status.
//
// The synthesis is a merge-join over product-id-sorted inputs; the result
// is sorted by product id and stable across repeated calls.
func AllReports(ctx context.Context, db *auditdb.DB, audit *auditdb.Audit, products []catalog.Product) ([]auditdb.Report, error) {
	explicit, err := db.Reports(ctx, audit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		return explicit, nil
	}

	scans, err := db.Scans(ctx, audit)
	if err != nil {
		return nil, err
	}

	// Explicit None carries no decision; drop it so synthesis assigns a
	// definite status below.
	reports := explicit[:0]
	for _, report := range explicit {
		if report.Status != auditdb.ReorderNone {
			reports = append(reports, report)
		}
	}

	reports = synthesizeFromScans(audit, reports, scans)
	reports = synthesizeFromCatalog(audit, reports, products)

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ProductID < reports[j].ProductID
	})
	return reports, nil
}

// synthesizeFromScans adds an In Stock report for every scanned product
// that has no explicit report. Both inputs arrive sorted by product id.
func synthesizeFromScans(audit *auditdb.Audit, reports []auditdb.Report, scans []auditdb.Scan) []auditdb.Report {
	out := reports
	i := 0
	lastProduct := -1
	for _, scan := range scans {
		if scan.ProductID == lastProduct {
			continue
		}
		lastProduct = scan.ProductID
		for i < len(reports) && reports[i].ProductID < scan.ProductID {
			i++
		}
		if i < len(reports) && reports[i].ProductID == scan.ProductID {
			continue
		}
		scanID := scan.ID
		out = append(out, auditdb.Report{
			AuditID:   audit.ID,
			ScanID:    &scanID,
			ProductID: scan.ProductID,
			Status:    auditdb.ReorderInStock,
			CreatedAt: scan.CreatedAt,
			UpdatedAt: scan.UpdatedAt,
		})
	}
	return out
}

// synthesizeFromCatalog adds an Out of Stock report for every catalog
// product still without a report.
func synthesizeFromCatalog(audit *auditdb.Audit, reports []auditdb.Report, products []catalog.Product) []auditdb.Report {
	covered := make([]int, 0, len(reports))
	for _, report := range reports {
		covered = append(covered, report.ProductID)
	}
	sort.Ints(covered)

	sorted := make([]catalog.Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ChainXProductID < sorted[j].ChainXProductID
	})

	out := reports
	i := 0
	lastProduct := -1
	for _, product := range sorted {
		if product.ChainXProductID == lastProduct {
			continue
		}
		lastProduct = product.ChainXProductID
		for i < len(covered) && covered[i] < product.ChainXProductID {
			i++
		}
		if i < len(covered) && covered[i] == product.ChainXProductID {
			continue
		}
		out = append(out, auditdb.Report{
			AuditID:   audit.ID,
			ProductID: product.ChainXProductID,
			Status:    auditdb.ReorderOutOfStock,
			CreatedAt: audit.StartedAt,
			UpdatedAt: audit.StartedAt,
		})
	}
	return out
}
