package auditdb

import "time"

// ReorderStatus classifies a product's shelf state within an audit.
type ReorderStatus int

const (
	ReorderNone       ReorderStatus = 0
	ReorderInStock    ReorderStatus = 1
	ReorderOutOfStock ReorderStatus = 2
	ReorderVoid       ReorderStatus = 3
)

// DisplayName renders the status for receipts and tables.
func (r ReorderStatus) DisplayName() string {
	switch r {
	case ReorderInStock:
		return "In Stock"
	case ReorderOutOfStock:
		return "Out of Stock"
	case ReorderVoid:
		return "Void"
	default:
		return ""
	}
}

// Code renders the short reorder code printed on receipts.
func (r ReorderStatus) Code() string {
	switch r {
	case ReorderInStock:
		return "I"
	case ReorderOutOfStock:
		return "OOS"
	case ReorderVoid:
		return "V"
	default:
		return ""
	}
}

// ParseReorderStatus maps user input (name or code, case-insensitive) to a
// status.
func ParseReorderStatus(value string) (ReorderStatus, bool) {
	switch normalizeStatusInput(value) {
	case "instock", "i":
		return ReorderInStock, true
	case "outofstock", "oos", "o":
		return ReorderOutOfStock, true
	case "void", "v":
		return ReorderVoid, true
	case "none", "":
		return ReorderNone, true
	default:
		return ReorderNone, false
	}
}

// Audit is one store visit. EndedAt == nil means the audit is open.
type Audit struct {
	ID               string
	UserID           int
	StoreID          int
	StoreDescription string
	AuditTypeID      int
	StartedAt        time.Time
	EndedAt          *time.Time
	LatitudeAtStart  *float64
	LongitudeAtStart *float64
	LatitudeAtEnd    *float64
	LongitudeAtEnd   *float64
}

// Completed reports whether the audit has ended.
func (a *Audit) Completed() bool {
	return a != nil && a.EndedAt != nil
}

// Scan is one captured product observation. ScanData == nil marks a manual
// entry rather than a barcode read.
type Scan struct {
	ID          string
	AuditID     string
	ProductID   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RetailPrice *float64
	SalePrice   *float64
	ScanData    *string
	ScanTypeID  int
	ProductName string
	BrandName   string
}

// Report is an explicit reorder decision for a product. ID is empty until
// the report is persisted; at most one row exists per (audit, product).
type Report struct {
	ID        string
	AuditID   string
	ScanID    *string
	ProductID int
	Status    ReorderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SelectedConditions is the set of SKU condition ids attached to a product
// within an audit; at most one row per (audit, product).
type SelectedConditions struct {
	ID           string
	AuditID      string
	ProductID    int
	ConditionIDs []int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Notes holds the per-audit free text. ID is empty until persisted;
// Contents is internal, StoreText is shared with the store.
type Notes struct {
	ID        string
	AuditID   string
	Contents  string
	StoreText string
}
