package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStoresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List the synced stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				stores, err := e.catalog.Stores(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(stores) == 0 {
					fmt.Fprintln(out, "Catalog is empty; run `fieldaudit sync`")
					return nil
				}

				rows := make([][]string, 0, len(stores))
				for _, store := range stores {
					lastAudit := "-"
					if len(store.History) > 0 {
						lastAudit = formatTimePtr(store.History[0].LastAuditDate)
					}
					rows = append(rows, []string{
						strconv.Itoa(store.ID),
						store.ChainName,
						store.Description(),
						dash(store.City),
						lastAudit,
					})
				}
				headers := []string{"ID", "Chain", "Store", "City", "Last audit"}
				aligns := []columnAlignment{alignRight}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}
}

func newChainsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List the synced chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(e *engine) error {
				chains, err := e.catalog.Chains(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(chains) == 0 {
					fmt.Fprintln(out, "Catalog is empty; run `fieldaudit sync`")
					return nil
				}

				rows := make([][]string, 0, len(chains))
				for _, chain := range chains {
					rows = append(rows, []string{
						strconv.Itoa(chain.ChainID),
						chain.Name,
						dash(chain.Code),
					})
				}
				headers := []string{"ID", "Chain", "Code"}
				aligns := []columnAlignment{alignRight}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}
}

func newProductsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "products <store-id>",
		Short: "List the catalog products for a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := parsePositiveID(args[0], "store id")
			if err != nil {
				return err
			}
			return ctx.withEngine(func(e *engine) error {
				store, err := e.catalog.Store(cmd.Context(), storeID)
				if err != nil {
					return err
				}
				products, err := e.catalog.ProductsForStore(cmd.Context(), *store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(products) == 0 {
					fmt.Fprintf(out, "No products for %s\n", store.Description())
					return nil
				}

				rows := make([][]string, 0, len(products))
				for _, product := range products {
					rows = append(rows, []string{
						strconv.Itoa(product.ChainXProductID),
						product.BrandName,
						product.Name,
						dash(product.UPC),
						dash(product.CurrentReorderCode),
						formatPrice(product.RetailPriceAverage),
					})
				}
				headers := []string{"ID", "Brand", "Product", "UPC", "Code", "Avg price"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}
}
