package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/logging"
	"fieldaudit/internal/session"
	"fieldaudit/internal/timefmt"
)

// ReceiptLine is one product entry on the receipt.
type ReceiptLine struct {
	ReorderCode string
	ProductName string
}

// ConditionSection groups the products flagged with one SKU condition.
type ConditionSection struct {
	ConditionID int
	Name        string
	Items       []ReceiptLine
}

// Receipt is the printable reorder document for a completed audit.
type Receipt struct {
	ClientName string
	StoreName  string
	AuditStamp string
	OutOfStock []ReceiptLine
	Conditions []ConditionSection
	Voids      []ReceiptLine
	StoreNotes string
}

// displayReorderCode falls back from the current to the previous reorder
// code, then to a placeholder.
func displayReorderCode(product catalog.Product) string {
	if code := strings.TrimSpace(product.CurrentReorderCode); code != "" {
		return code
	}
	if code := strings.TrimSpace(product.PreviousReorderCode); code != "" {
		return code
	}
	return "--"
}

// BuildReceipt projects the audit's explicit reports into a receipt.
// Voids, condition sections, and store notes appear only when the client
// settings enable them; condition ids the server never defined are skipped
// with a warning.
func BuildReceipt(ctx context.Context, db *auditdb.DB, audit *auditdb.Audit, store catalog.Store, products []catalog.Product, sess *session.Session, logger *slog.Logger) (*Receipt, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	reports, err := db.Reports(ctx, audit)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int]auditdb.Report, len(reports))
	for _, report := range reports {
		byProduct[report.ProductID] = report
	}

	printVoids := sess.SettingBool(session.SettingPrintVoids)
	printConditions := sess.SettingBool(session.SettingPrintConditions)
	printNotes := sess.SettingBool(session.SettingAllowStoreNotes) &&
		sess.SettingBool(session.SettingPrintStoreNotes)

	sorted := make([]catalog.Product, len(products))
	copy(sorted, products)
	collator := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return collator.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})

	stamp := audit.StartedAt
	if audit.EndedAt != nil {
		stamp = *audit.EndedAt
	}
	receipt := &Receipt{
		ClientName: sess.User.ClientName,
		StoreName:  store.Description(),
		AuditStamp: timefmt.Format(stamp),
	}

	conditionSections := map[int]*ConditionSection{}
	for _, product := range sorted {
		line := ReceiptLine{
			ReorderCode: displayReorderCode(product),
			ProductName: product.Name,
		}
		if report, ok := byProduct[product.ChainXProductID]; ok {
			switch {
			case report.Status == auditdb.ReorderOutOfStock:
				receipt.OutOfStock = append(receipt.OutOfStock, line)
			case printVoids && report.Status == auditdb.ReorderVoid:
				receipt.Voids = append(receipt.Voids, line)
			}
		}
		if !printConditions {
			continue
		}
		record, err := db.SelectedConditions(ctx, audit, product.ChainXProductID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		for _, conditionID := range record.ConditionIDs {
			name, ok := sess.ConditionName(conditionID)
			if !ok {
				logger.Warn("skipping unknown sku condition",
					logging.Int("condition_id", conditionID),
					logging.Int("product_id", product.ChainXProductID))
				continue
			}
			section := conditionSections[conditionID]
			if section == nil {
				section = &ConditionSection{ConditionID: conditionID, Name: name}
				conditionSections[conditionID] = section
			}
			section.Items = append(section.Items, line)
		}
	}

	ids := make([]int, 0, len(conditionSections))
	for id := range conditionSections {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		receipt.Conditions = append(receipt.Conditions, *conditionSections[id])
	}

	if printNotes {
		notes, err := db.GetNotes(ctx, audit)
		if err != nil {
			return nil, err
		}
		receipt.StoreNotes = strings.TrimSpace(notes.StoreText)
	}
	return receipt, nil
}

// Render lays the receipt out as plain text.
func (r *Receipt) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Reorder List For\n", r.ClientName)
	fmt.Fprintf(&b, "%s %s\n", r.StoreName, r.AuditStamp)

	codeWidth := 0
	measure := func(items []ReceiptLine) {
		for _, item := range items {
			if len(item.ReorderCode) > codeWidth {
				codeWidth = len(item.ReorderCode)
			}
		}
	}
	measure(r.OutOfStock)
	measure(r.Voids)
	for _, section := range r.Conditions {
		measure(section.Items)
	}

	writeSection := func(name string, items []ReceiptLine) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(name))
		for _, item := range items {
			fmt.Fprintf(&b, "%-*s  %s\n", codeWidth, item.ReorderCode, item.ProductName)
		}
	}

	writeSection(auditdb.ReorderOutOfStock.DisplayName(), r.OutOfStock)
	for _, section := range r.Conditions {
		writeSection(section.Name, section.Items)
	}
	writeSection(auditdb.ReorderVoid.DisplayName(), r.Voids)

	if r.StoreNotes != "" {
		fmt.Fprintf(&b, "\nNOTES:\n%s\n", r.StoreNotes)
	}

	b.WriteString("\n--- www.AuditPRO.io ---\n")
	return b.String()
}
