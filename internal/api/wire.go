package api

import (
	"encoding/json"
	"log/slog"

	"fieldaudit/internal/catalog"
	"fieldaudit/internal/logging"
	"fieldaudit/internal/session"
	"fieldaudit/internal/timefmt"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const statusSuccess = "success"

type wireLogin struct {
	SessionID string `json:"session_id"`
}

type wireSetting struct {
	Name  string `json:"setting_name"`
	Value string `json:"setting_value"`
}

type wireUser struct {
	UserID        int                    `json:"user_id"`
	FirstName     string                 `json:"user_first_name"`
	LastName      string                 `json:"user_last_name"`
	Email         string                 `json:"user_email"`
	RoleID        int                    `json:"role_id"`
	RoleName      string                 `json:"role_name"`
	RoleRank      int                    `json:"role_rank"`
	ClientID      int                    `json:"client_id"`
	ClientName    string                 `json:"client_name"`
	Settings      []wireSetting          `json:"client_settings"`
	SKUConditions []session.SKUCondition `json:"sku_conditions"`
}

func (w wireUser) toProfile() Profile {
	settings := make(map[string]string, len(w.Settings))
	for _, setting := range w.Settings {
		settings[setting.Name] = setting.Value
	}
	return Profile{
		User: session.User{
			ID:         w.UserID,
			FirstName:  w.FirstName,
			LastName:   w.LastName,
			Email:      w.Email,
			RoleID:     w.RoleID,
			RoleName:   w.RoleName,
			RoleRank:   w.RoleRank,
			ClientID:   w.ClientID,
			ClientName: w.ClientName,
		},
		Settings:      settings,
		SKUConditions: w.SKUConditions,
	}
}

type wireAuditHistory struct {
	AuditID        string  `json:"audit_id"`
	AuditCounter   int     `json:"audit_counter"`
	UserEmail      *string `json:"user_email"`
	AuditNote      *string `json:"audit_note"`
	StoreNote      *string `json:"audit_store_note"`
	PercentInStock int     `json:"percent_in_stock"`
	PercentVoid    int     `json:"percent_void"`
	DurationTotal  *string `json:"audit_duration_total"`
	DaysSinceAudit int     `json:"days_since_audit"`
	LastAuditDate  *string `json:"last_audit_date"`
}

type wireStore struct {
	ClientID       int                `json:"client_id"`
	ChainID        int                `json:"chain_id"`
	ChainName      *string            `json:"chain_name"`
	ChainCode      *string            `json:"chain_code"`
	StoreID        int                `json:"store_id"`
	StoreName      *string            `json:"store_name"`
	Identifier     *string            `json:"store_identifier"`
	StreetAddress1 *string            `json:"store_street_address_1"`
	StreetAddress2 *string            `json:"store_street_address_2"`
	City           *string            `json:"store_city"`
	Zip            *string            `json:"store_zip"`
	Latitude       *float64           `json:"store_lat"`
	Longitude      *float64           `json:"store_lon"`
	AuditHistory   []wireAuditHistory `json:"audit_history"`
}

func (w wireStore) valid() bool {
	return w.ClientID > 0 && w.ChainID > 0 && w.StoreID > 0 &&
		w.ChainName != nil && w.ChainCode != nil && w.StoreName != nil
}

func (w wireStore) toDomain(logger *slog.Logger) (catalog.Store, error) {
	store := catalog.Store{
		ClientID:       w.ClientID,
		ChainID:        w.ChainID,
		ChainName:      stringValue(w.ChainName),
		ChainCode:      stringValue(w.ChainCode),
		ID:             w.StoreID,
		Name:           stringValue(w.StoreName),
		Identifier:     stringValue(w.Identifier),
		StreetAddress1: stringValue(w.StreetAddress1),
		StreetAddress2: stringValue(w.StreetAddress2),
		City:           stringValue(w.City),
		Zip:            stringValue(w.Zip),
		Latitude:       w.Latitude,
		Longitude:      w.Longitude,
	}
	for _, history := range w.AuditHistory {
		lastDate, err := timefmt.ParsePtr(stringValue(history.LastAuditDate))
		if err != nil {
			logger.Warn("skipping audit history with bad date",
				logging.Int("store_id", w.StoreID),
				logging.String("audit_id", history.AuditID),
				logging.Error(err))
			continue
		}
		store.History = append(store.History, catalog.AuditHistory{
			AuditID:        history.AuditID,
			Counter:        history.AuditCounter,
			UserEmail:      stringValue(history.UserEmail),
			Note:           stringValue(history.AuditNote),
			StoreNote:      stringValue(history.StoreNote),
			PercentInStock: history.PercentInStock,
			PercentVoid:    history.PercentVoid,
			DurationTotal:  stringValue(history.DurationTotal),
			DaysSinceAudit: history.DaysSinceAudit,
			LastAuditDate:  lastDate,
		})
	}
	return store, nil
}

type wireProduct struct {
	ChainXProductID     int      `json:"chain_x_product_id"`
	ClientID            int      `json:"client_id"`
	ChainID             int      `json:"chain_id"`
	ProductID           int      `json:"product_id"`
	BrandName           *string  `json:"brand_name"`
	BrandNameShort      *string  `json:"brand_name_short"`
	ProductName         *string  `json:"product_name"`
	UPC                 *string  `json:"upc"`
	MSRP                *float64 `json:"msrp"`
	IsRandomWeight      bool     `json:"is_random_weight"`
	RetailPriceMin      *float64 `json:"retail_price_min"`
	RetailPriceMax      *float64 `json:"retail_price_max"`
	RetailPriceAverage  *float64 `json:"retail_price_average"`
	CategoryName        *string  `json:"category_name"`
	SubcategoryName     *string  `json:"subcategory_name"`
	ProductTypeName     *string  `json:"product_type_name"`
	CurrentReorderCode  *string  `json:"current_reorder_code"`
	PreviousReorderCode *string  `json:"previous_reorder_code"`
	BrandSKU            *string  `json:"brand_sku"`
	ChainSKU            *string  `json:"chain_sku"`
	LastScannedAt       *string  `json:"last_scanned_at"`
	LastScannedPrice    *float64 `json:"last_scanned_price"`
	LastScanWasSale     bool     `json:"last_scan_was_sale"`
	InStockPriceMin     *float64 `json:"in_stock_price_min"`
	InStockPriceMax     *float64 `json:"in_stock_price_max"`
}

func (w wireProduct) valid() bool {
	return w.ChainXProductID > 0 && w.ClientID > 0 && w.ChainID > 0 && w.ProductID > 0 &&
		w.BrandName != nil && w.ProductName != nil && w.UPC != nil
}

func (w wireProduct) toDomain() (catalog.Product, error) {
	lastScanned, err := timefmt.ParsePtr(stringValue(w.LastScannedAt))
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.Product{
		ChainXProductID:     w.ChainXProductID,
		ClientID:            w.ClientID,
		ChainID:             w.ChainID,
		ProductID:           w.ProductID,
		BrandName:           stringValue(w.BrandName),
		BrandNameShort:      stringValue(w.BrandNameShort),
		Name:                stringValue(w.ProductName),
		UPC:                 stringValue(w.UPC),
		MSRP:                w.MSRP,
		IsRandomWeight:      w.IsRandomWeight,
		RetailPriceMin:      w.RetailPriceMin,
		RetailPriceMax:      w.RetailPriceMax,
		RetailPriceAverage:  w.RetailPriceAverage,
		CategoryName:        stringValue(w.CategoryName),
		SubcategoryName:     stringValue(w.SubcategoryName),
		TypeName:            stringValue(w.ProductTypeName),
		CurrentReorderCode:  stringValue(w.CurrentReorderCode),
		PreviousReorderCode: stringValue(w.PreviousReorderCode),
		BrandSKU:            stringValue(w.BrandSKU),
		ChainSKU:            stringValue(w.ChainSKU),
		LastScannedAt:       lastScanned,
		LastScannedPrice:    w.LastScannedPrice,
		LastScanWasSale:     w.LastScanWasSale,
		InStockPriceMin:     w.InStockPriceMin,
		InStockPriceMax:     w.InStockPriceMax,
	}, nil
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
