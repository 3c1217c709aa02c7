package catalog

import (
	"context"
	"database/sql"
	_ "embed"

	"fieldaudit/internal/config"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/sqlitedb"
	"fieldaudit/internal/timefmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion tracks the embedded schema. Bump together with Version when
// the table layout changes.
const schemaVersion = Version

// Catalog manages the synced store/product snapshot backed by SQLite.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Catalog, error) {
	path := cfg.CatalogDatabasePath()
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, faults.Storage("open catalog database", err)
	}
	if err := sqlitedb.InitSchema(context.Background(), db, schemaSQL, schemaVersion); err != nil {
		_ = db.Close()
		return nil, faults.Storage("initialize catalog schema", err)
	}
	return &Catalog{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Catalog) Path() string {
	return c.path
}

// IsEmpty reports whether the catalog has never been synced.
func (c *Catalog) IsEmpty(ctx context.Context) (bool, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM stores`).Scan(&count)
	if err != nil {
		return false, faults.Storage("count stores", err)
	}
	return count == 0, nil
}

// ReplaceAll swaps the entire catalog content in a single transaction.
// Either the new snapshot lands completely or the previous one survives.
func (c *Catalog) ReplaceAll(ctx context.Context, stores []Store, products []Product) error {
	ctx = sqlitedb.EnsureContext(ctx)
	return sqlitedb.RetryOnBusy(ctx, func() error {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return faults.Storage("begin catalog replace", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, table := range []string{"audit_history", "products", "stores"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return faults.Storage("clear "+table, err)
			}
		}

		for _, store := range stores {
			if err := insertStore(ctx, tx, store); err != nil {
				return err
			}
		}
		for _, product := range products {
			if err := insertProduct(ctx, tx, product); err != nil {
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return faults.Storage("commit catalog replace", err)
		}
		return nil
	})
}

func insertStore(ctx context.Context, tx *sql.Tx, store Store) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO stores (
            store_id, client_id, chain_id, chain_name, chain_code,
            store_name, store_identifier, street_address_1, street_address_2,
            city, zip, latitude, longitude
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		store.ID, store.ClientID, store.ChainID, store.ChainName, store.ChainCode,
		store.Name, store.Identifier, store.StreetAddress1, store.StreetAddress2,
		store.City, store.Zip,
		sqlitedb.NullableFloat(store.Latitude), sqlitedb.NullableFloat(store.Longitude),
	)
	if err != nil {
		return faults.Storage("insert store", err)
	}
	for _, history := range store.History {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO audit_history (
                store_id, audit_id, audit_counter, user_email, audit_note,
                audit_store_note, percent_in_stock, percent_void,
                audit_duration_total, days_since_audit, last_audit_date
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			store.ID, history.AuditID, history.Counter, history.UserEmail, history.Note,
			history.StoreNote, history.PercentInStock, history.PercentVoid,
			history.DurationTotal, history.DaysSinceAudit,
			sqlitedb.NullableString(timefmt.FormatPtr(history.LastAuditDate)),
		)
		if err != nil {
			return faults.Storage("insert audit history", err)
		}
	}
	return nil
}

func insertProduct(ctx context.Context, tx *sql.Tx, product Product) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO products (
            chain_x_product_id, client_id, chain_id, product_id,
            brand_name, brand_name_short, product_name, upc, msrp,
            is_random_weight, retail_price_min, retail_price_max,
            retail_price_average, category_name, subcategory_name,
            product_type_name, current_reorder_code, previous_reorder_code,
            brand_sku, chain_sku, last_scanned_at, last_scanned_price,
            last_scan_was_sale, in_stock_price_min, in_stock_price_max
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ChainXProductID, product.ClientID, product.ChainID, product.ProductID,
		product.BrandName, product.BrandNameShort, product.Name, product.UPC,
		sqlitedb.NullableFloat(product.MSRP),
		boolToInt(product.IsRandomWeight),
		sqlitedb.NullableFloat(product.RetailPriceMin),
		sqlitedb.NullableFloat(product.RetailPriceMax),
		sqlitedb.NullableFloat(product.RetailPriceAverage),
		product.CategoryName, product.SubcategoryName, product.TypeName,
		product.CurrentReorderCode, product.PreviousReorderCode,
		product.BrandSKU, product.ChainSKU,
		sqlitedb.NullableString(timefmt.FormatPtr(product.LastScannedAt)),
		sqlitedb.NullableFloat(product.LastScannedPrice),
		boolToInt(product.LastScanWasSale),
		sqlitedb.NullableFloat(product.InStockPriceMin),
		sqlitedb.NullableFloat(product.InStockPriceMax),
	)
	if err != nil {
		return faults.Storage("insert product", err)
	}
	return nil
}

// Store fetches a single store with its audit history, or a not-found error.
func (c *Catalog) Store(ctx context.Context, id int) (*Store, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	row := c.db.QueryRowContext(ctx, selectStores+` WHERE store_id = ?`, id)
	store, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, faults.NotFound("store not found")
	}
	if err != nil {
		return nil, faults.Storage("query store", err)
	}
	if err := c.attachHistory(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// Stores returns every store ordered by chain then name.
func (c *Catalog) Stores(ctx context.Context) ([]Store, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	rows, err := c.db.QueryContext(ctx, selectStores+` ORDER BY chain_name, store_name, store_id`)
	if err != nil {
		return nil, faults.Storage("query stores", err)
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, faults.Storage("scan store", err)
		}
		if err := c.attachHistory(ctx, store); err != nil {
			return nil, err
		}
		stores = append(stores, *store)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("iterate stores", err)
	}
	return stores, nil
}

// ProductsForStore returns the products for the store's client and chain,
// ordered by product name.
func (c *Catalog) ProductsForStore(ctx context.Context, store Store) ([]Product, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	rows, err := c.db.QueryContext(ctx,
		selectProducts+` WHERE client_id = ? AND chain_id = ? ORDER BY product_name, chain_x_product_id`,
		store.ClientID, store.ChainID,
	)
	if err != nil {
		return nil, faults.Storage("query products", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, faults.Storage("scan product", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("iterate products", err)
	}
	return products, nil
}

// Chains returns the distinct chains represented in the catalog, ordered by
// name.
func (c *Catalog) Chains(ctx context.Context) ([]Chain, error) {
	ctx = sqlitedb.EnsureContext(ctx)
	rows, err := c.db.QueryContext(ctx, `
        SELECT DISTINCT client_id, chain_id, chain_name, chain_code
        FROM stores ORDER BY chain_name, chain_id`)
	if err != nil {
		return nil, faults.Storage("query chains", err)
	}
	defer rows.Close()

	var chains []Chain
	for rows.Next() {
		var chain Chain
		if err := rows.Scan(&chain.ClientID, &chain.ChainID, &chain.Name, &chain.Code); err != nil {
			return nil, faults.Storage("scan chain", err)
		}
		chains = append(chains, chain)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage("iterate chains", err)
	}
	return chains, nil
}

func (c *Catalog) attachHistory(ctx context.Context, store *Store) error {
	rows, err := c.db.QueryContext(ctx, `
        SELECT audit_id, audit_counter, user_email, audit_note, audit_store_note,
               percent_in_stock, percent_void, audit_duration_total,
               days_since_audit, last_audit_date
        FROM audit_history WHERE store_id = ? ORDER BY audit_counter DESC`,
		store.ID,
	)
	if err != nil {
		return faults.Storage("query audit history", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			history  AuditHistory
			lastDate sql.NullString
		)
		if err := rows.Scan(
			&history.AuditID, &history.Counter, &history.UserEmail, &history.Note,
			&history.StoreNote, &history.PercentInStock, &history.PercentVoid,
			&history.DurationTotal, &history.DaysSinceAudit, &lastDate,
		); err != nil {
			return faults.Storage("scan audit history", err)
		}
		if lastDate.Valid {
			parsed, err := timefmt.ParsePtr(lastDate.String)
			if err != nil {
				return err
			}
			history.LastAuditDate = parsed
		}
		store.History = append(store.History, history)
	}
	if err := rows.Err(); err != nil {
		return faults.Storage("iterate audit history", err)
	}
	return nil
}

const selectStores = `
    SELECT store_id, client_id, chain_id, chain_name, chain_code,
           store_name, store_identifier, street_address_1, street_address_2,
           city, zip, latitude, longitude
    FROM stores`

const selectProducts = `
    SELECT chain_x_product_id, client_id, chain_id, product_id,
           brand_name, brand_name_short, product_name, upc, msrp,
           is_random_weight, retail_price_min, retail_price_max,
           retail_price_average, category_name, subcategory_name,
           product_type_name, current_reorder_code, previous_reorder_code,
           brand_sku, chain_sku, last_scanned_at, last_scanned_price,
           last_scan_was_sale, in_stock_price_min, in_stock_price_max
    FROM products`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (*Store, error) {
	var (
		store    Store
		lat, lon sql.NullFloat64
	)
	err := row.Scan(
		&store.ID, &store.ClientID, &store.ChainID, &store.ChainName, &store.ChainCode,
		&store.Name, &store.Identifier, &store.StreetAddress1, &store.StreetAddress2,
		&store.City, &store.Zip, &lat, &lon,
	)
	if err != nil {
		return nil, err
	}
	store.Latitude = nullableFloatPtr(lat)
	store.Longitude = nullableFloatPtr(lon)
	return &store, nil
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		product                   Product
		msrp, priceMin, priceMax  sql.NullFloat64
		priceAvg, scannedPrice    sql.NullFloat64
		inStockMin, inStockMax    sql.NullFloat64
		randomWeight, scanWasSale int
		lastScannedAt             sql.NullString
	)
	err := row.Scan(
		&product.ChainXProductID, &product.ClientID, &product.ChainID, &product.ProductID,
		&product.BrandName, &product.BrandNameShort, &product.Name, &product.UPC, &msrp,
		&randomWeight, &priceMin, &priceMax, &priceAvg,
		&product.CategoryName, &product.SubcategoryName, &product.TypeName,
		&product.CurrentReorderCode, &product.PreviousReorderCode,
		&product.BrandSKU, &product.ChainSKU, &lastScannedAt, &scannedPrice,
		&scanWasSale, &inStockMin, &inStockMax,
	)
	if err != nil {
		return nil, err
	}
	product.MSRP = nullableFloatPtr(msrp)
	product.IsRandomWeight = randomWeight != 0
	product.RetailPriceMin = nullableFloatPtr(priceMin)
	product.RetailPriceMax = nullableFloatPtr(priceMax)
	product.RetailPriceAverage = nullableFloatPtr(priceAvg)
	product.LastScannedPrice = nullableFloatPtr(scannedPrice)
	product.LastScanWasSale = scanWasSale != 0
	product.InStockPriceMin = nullableFloatPtr(inStockMin)
	product.InStockPriceMax = nullableFloatPtr(inStockMax)
	if lastScannedAt.Valid {
		parsed, err := timefmt.ParsePtr(lastScannedAt.String)
		if err != nil {
			return nil, err
		}
		product.LastScannedAt = parsed
	}
	return &product, nil
}

func nullableFloatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
