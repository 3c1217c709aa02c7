package catalog

import "time"

// Version identifies the catalog schema and content conventions. The session
// records the version it last synced against so the CLI can flag a stale
// catalog after an upgrade.
const Version = 1

// Store is a retail location eligible for auditing.
type Store struct {
	ClientID       int
	ChainID        int
	ChainName      string
	ChainCode      string
	ID             int
	Name           string
	Identifier     string
	StreetAddress1 string
	StreetAddress2 string
	City           string
	Zip            string
	Latitude       *float64
	Longitude      *float64
	History        []AuditHistory
}

// Description renders the store the way audit snapshots record it.
func (s Store) Description() string {
	if s.Identifier != "" {
		return s.Name + " #" + s.Identifier
	}
	return s.Name
}

// AuditHistory is a server-computed summary of a prior audit at a store.
// Rows are immutable; they are replaced wholesale with their store.
type AuditHistory struct {
	AuditID        string
	Counter        int
	UserEmail      string
	Note           string
	StoreNote      string
	PercentInStock int
	PercentVoid    int
	DurationTotal  string
	DaysSinceAudit int
	LastAuditDate  *time.Time
}

// Product is a catalog entry scoped to a client and chain. ChainXProductID
// is the chain-scoped identity every scan and report refers to.
type Product struct {
	ChainXProductID     int
	ClientID            int
	ChainID             int
	ProductID           int
	BrandName           string
	BrandNameShort      string
	Name                string
	UPC                 string
	MSRP                *float64
	IsRandomWeight      bool
	RetailPriceMin      *float64
	RetailPriceMax      *float64
	RetailPriceAverage  *float64
	CategoryName        string
	SubcategoryName     string
	TypeName            string
	CurrentReorderCode  string
	PreviousReorderCode string
	BrandSKU            string
	ChainSKU            string
	LastScannedAt       *time.Time
	LastScannedPrice    *float64
	LastScanWasSale     bool
	InStockPriceMin     *float64
	InStockPriceMax     *float64
}

// Chain is the distinct (client, chain) projection over stores.
type Chain struct {
	ClientID int
	ChainID  int
	Name     string
	Code     string
}
