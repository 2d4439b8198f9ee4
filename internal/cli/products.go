package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"BizRecords/internal/catalog"
	"BizRecords/internal/export"
	"BizRecords/internal/shop"
)

var errNotFound = errors.New("not found")

func newProductsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "View and edit the product catalog",
	}
	cmd.AddCommand(
		newProductsViewCmd(e),
		newProductsAddCmd(e),
		newProductsUpdateCmd(e),
		newProductsDeleteCmd(e),
		newExportCmd(e, "products", export.ProductsFile, func(w io.Writer, s *shop.Shop) error {
			return export.Products(w, s.Catalog.List())
		}),
	)
	return cmd
}

func newProductsViewCmd(e *env) *cobra.Command {
	var (
		latest     int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the newest products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(_ context.Context, s *shop.Shop) error {
				products := s.Catalog.Latest(latest)
				if jsonOutput {
					return renderJSON(cmd, products)
				}
				fmt.Fprint(cmd.OutOrStdout(), productTable(products))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&latest, "latest", "n", catalog.DefaultLatest, "number of newest products to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

type productFlags struct {
	id       string
	name     string
	price    string
	quantity int
}

func (f *productFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.price, "price", "", "unit price, e.g. 9.99")
	cmd.Flags().IntVar(&f.quantity, "quantity", 0, "quantity in stock")
}

// apply overlays the flags the user set onto p.
func (f *productFlags) apply(cmd *cobra.Command, p *catalog.Product) error {
	if cmd.Flags().Changed("name") {
		p.Name = strings.TrimSpace(f.name)
	}
	if cmd.Flags().Changed("price") {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", f.price, err)
		}
		p.Price = price
	}
	if cmd.Flags().Changed("quantity") {
		p.Quantity = f.quantity
	}

	switch {
	case p.ID == "":
		return errors.New("product id is required")
	case p.Name == "":
		return errors.New("product name is required")
	case p.Price.IsNegative():
		return errors.New("price must be >= 0")
	case p.Quantity < 1:
		return errors.New("quantity must be >= 1")
	}
	return nil
}

func newProductsAddCmd(e *env) *cobra.Command {
	f := &productFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := catalog.Product{ID: strings.TrimSpace(f.id)}
			if err := f.apply(cmd, &p); err != nil {
				return err
			}
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				if err := s.Catalog.Add(ctx, p); err != nil {
					return err
				}
				success(cmd, "Product %s added.", p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.id, "id", "", "product id")
	f.bind(cmd)
	return cmd
}

func newProductsUpdateCmd(e *env) *cobra.Command {
	f := &productFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the fields of an existing product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				p, ok := s.Catalog.Get(args[0])
				if !ok {
					return fmt.Errorf("product %s: %w", args[0], errNotFound)
				}
				if err := f.apply(cmd, &p); err != nil {
					return err
				}
				found, err := s.Catalog.Update(ctx, p)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("product %s: %w", args[0], errNotFound)
				}
				success(cmd, "Product %s updated.", p.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newProductsDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				found, err := s.Catalog.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("product %s: %w", args[0], errNotFound)
				}
				success(cmd, "Product %s deleted.", args[0])
				return nil
			})
		},
	}
}

// newExportCmd writes one collection as a workbook.
func newExportCmd(e *env, what, defaultFile string, write func(io.Writer, *shop.Shop) error) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export " + what + " to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(_ context.Context, s *shop.Shop) error {
				err := writeFile(out, func(w io.Writer) error { return write(w, s) })
				if err != nil {
					return fmt.Errorf("exporting %s: %w", what, err)
				}
				success(cmd, "Wrote %s.", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", defaultFile, "output file")
	return cmd
}
