package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/reconcile"
	"fieldaudit/internal/session"
)

// openAuditProducts resolves the open audit together with its store's
// slice of the catalog.
func (e *engine) openAuditProducts(ctx context.Context) (*auditdb.Audit, *catalog.Store, []catalog.Product, error) {
	audit, err := e.db.ResumeAudit(ctx, e.sess.User.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if audit == nil {
		return nil, nil, nil, faults.State("no audit in progress")
	}
	store, err := e.catalog.Store(ctx, audit.StoreID)
	if err != nil {
		return nil, nil, nil, err
	}
	products, err := e.catalog.ProductsForStore(ctx, *store)
	if err != nil {
		return nil, nil, nil, err
	}
	return audit, store, products, nil
}

func findProduct(products []catalog.Product, id int) *catalog.Product {
	for i := range products {
		if products[i].ChainXProductID == id {
			return &products[i]
		}
	}
	return nil
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Record product scans",
	}
	scanCmd.AddCommand(newScanAddCommand(ctx))
	return scanCmd
}

func newScanAddCommand(ctx *commandContext) *cobra.Command {
	var barcode string
	var price, salePrice float64

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Record a scan against the open audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parsePositiveID(args[0], "product id")
			if err != nil {
				return err
			}
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				_, _, products, err := e.openAuditProducts(cmd.Context())
				if err != nil {
					return err
				}
				product := findProduct(products, productID)
				if product == nil {
					return faults.NotFound("product not found in this store's catalog")
				}

				scan := &auditdb.Scan{
					ProductID:   productID,
					ProductName: product.Name,
					BrandName:   product.BrandName,
				}
				if cmd.Flags().Changed("barcode") {
					scan.ScanData = &barcode
					scan.ScanTypeID = 1
				}
				if cmd.Flags().Changed("price") {
					scan.RetailPrice = &price
				}
				if cmd.Flags().Changed("sale-price") {
					scan.SalePrice = &salePrice
				}

				if _, err := e.manager().RecordScan(cmd.Context(), scan); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded scan of %s %s\n", product.BrandName, product.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&barcode, "barcode", "", "Raw barcode data; omit for a manual entry")
	cmd.Flags().Float64Var(&price, "price", 0, "Observed retail price")
	cmd.Flags().Float64Var(&salePrice, "sale-price", 0, "Observed sale price")
	return cmd
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Record reorder decisions",
	}
	reportCmd.AddCommand(newReportSetCommand(ctx))
	reportCmd.AddCommand(newReportListCommand(ctx))
	return reportCmd
}

func newReportSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <in-stock|out-of-stock|void|none>",
		Short: "Set a product's reorder status in the open audit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parsePositiveID(args[0], "product id")
			if err != nil {
				return err
			}
			status, ok := auditdb.ParseReorderStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown reorder status %q", args[1])
			}
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				audit, _, products, err := e.openAuditProducts(cmd.Context())
				if err != nil {
					return err
				}
				product := findProduct(products, productID)
				if product == nil {
					return faults.NotFound("product not found in this store's catalog")
				}

				report, err := e.db.GetReport(cmd.Context(), audit, productID)
				if err != nil {
					return err
				}
				if report == nil {
					report = &auditdb.Report{ProductID: productID}
				}
				report.Status = status
				if err := e.db.UpdateReport(cmd.Context(), audit, report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", product.BrandName, product.Name, status.DisplayName())
				return nil
			})
		},
	}
}

func newReportListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the reconciled status of every product in the open audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				audit, _, products, err := e.openAuditProducts(cmd.Context())
				if err != nil {
					return err
				}
				reports, err := reconcile.AllReports(cmd.Context(), e.db, audit, products)
				if err != nil {
					return err
				}

				byProduct := make(map[int]catalog.Product, len(products))
				for _, product := range products {
					byProduct[product.ChainXProductID] = product
				}

				rows := make([][]string, 0, len(reports))
				for _, report := range reports {
					product := byProduct[report.ProductID]
					source := "catalog"
					switch {
					case report.ID != "":
						source = "explicit"
					case report.ScanID != nil:
						source = "scan"
					}
					rows = append(rows, []string{
						strconv.Itoa(report.ProductID),
						product.BrandName,
						product.Name,
						report.Status.DisplayName(),
						source,
					})
				}

				out := cmd.OutOrStdout()
				headers := []string{"ID", "Brand", "Product", "Status", "Source"}
				aligns := []columnAlignment{alignRight}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}
}

func newConditionsCommand(ctx *commandContext) *cobra.Command {
	conditionsCmd := &cobra.Command{
		Use:   "conditions",
		Short: "Record SKU conditions",
	}
	conditionsCmd.AddCommand(newConditionsSetCommand(ctx))
	return conditionsCmd
}

func newConditionsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> [condition-id...]",
		Short: "Replace a product's selected conditions; no ids clears them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parsePositiveID(args[0], "product id")
			if err != nil {
				return err
			}
			ids, err := parseIDList(args[1:], "condition id")
			if err != nil {
				return err
			}
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				for _, id := range ids {
					if _, ok := e.sess.ConditionName(id); !ok {
						return faults.NotFound(fmt.Sprintf("condition %d is not defined for this client", id))
					}
				}
				audit, err := e.db.ResumeAudit(cmd.Context(), e.sess.User.ID)
				if err != nil {
					return err
				}
				if audit == nil {
					return faults.State("no audit in progress")
				}
				if err := e.db.SetSelectedConditions(cmd.Context(), audit, productID, ids); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					fmt.Fprintf(out, "Cleared conditions for product %d\n", productID)
					return nil
				}
				names := make([]string, 0, len(ids))
				for _, id := range ids {
					name, _ := e.sess.ConditionName(id)
					names = append(names, name)
				}
				fmt.Fprintf(out, "Conditions for product %d: %s\n", productID, strings.Join(names, ", "))
				return nil
			})
		},
	}
}

func newNotesCommand(ctx *commandContext) *cobra.Command {
	var text, storeText string

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Show or set notes on the open audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				if err := e.requireAuth(); err != nil {
					return err
				}
				audit, err := e.db.ResumeAudit(cmd.Context(), e.sess.User.ID)
				if err != nil {
					return err
				}
				if audit == nil {
					return faults.State("no audit in progress")
				}
				notes, err := e.db.GetNotes(cmd.Context(), audit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !cmd.Flags().Changed("text") && !cmd.Flags().Changed("store-text") {
					fmt.Fprintf(out, "Notes:       %s\n", dash(notes.Contents))
					fmt.Fprintf(out, "Store notes: %s\n", dash(notes.StoreText))
					return nil
				}

				contents := notes.Contents
				if cmd.Flags().Changed("text") {
					contents = text
				}
				store := notes.StoreText
				if cmd.Flags().Changed("store-text") {
					if !e.sess.SettingBool(session.SettingAllowStoreNotes) {
						return faults.State("store notes are not enabled for this client")
					}
					store = storeText
				}
				if err := e.db.UpdateNotes(cmd.Context(), notes, contents, store); err != nil {
					return err
				}
				fmt.Fprintln(out, "Notes updated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Audit notes")
	cmd.Flags().StringVar(&storeText, "store-text", "", "Notes shared with the store")
	return cmd
}
