package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"BizRecords/internal/export"
	"BizRecords/internal/invoice"
	"BizRecords/internal/order"
	"BizRecords/internal/shop"
	"BizRecords/pkg/kit"
)

func newOrdersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order", "o"},
		Short:   "View and edit orders, render invoices",
	}
	cmd.AddCommand(
		newOrdersViewCmd(e),
		newOrdersAddCmd(e),
		newOrdersAddItemCmd(e),
		newOrdersDeleteCmd(e),
		newOrdersTotalsCmd(e),
		newOrdersInvoiceCmd(e),
		newExportCmd(e, "orders", export.OrdersFile, func(w io.Writer, s *shop.Shop) error {
			return export.Orders(w, order.Rows(s.Ledger.List(), s.Catalog))
		}),
	)
	return cmd
}

func newOrdersViewCmd(e *env) *cobra.Command {
	var (
		latest     int
		customerID string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the newest orders, one row per line item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(_ context.Context, s *shop.Shop) error {
				orders := order.ForCustomer(s.Ledger.List(), strings.TrimSpace(customerID))
				orders = kit.Latest(orders, latest)
				if jsonOutput {
					return renderJSON(cmd, orders)
				}
				fmt.Fprint(cmd.OutOrStdout(), orderTable(order.Rows(orders, s.Catalog)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&latest, "latest", "n", order.DefaultLatest, "number of newest orders to show (0 for all)")
	cmd.Flags().StringVar(&customerID, "customer", "", "only orders of this customer id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newOrdersAddCmd(e *env) *cobra.Command {
	var customerID string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an empty order for a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID = strings.TrimSpace(customerID)
			if customerID == "" {
				return errors.New("--customer is required")
			}
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				o, err := s.Ledger.Create(ctx, customerID)
				if err != nil {
					return err
				}
				success(cmd, "Order %s created.", o.OrderID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&customerID, "customer", "", "customer id")
	return cmd
}

func newOrdersAddItemCmd(e *env) *cobra.Command {
	var (
		productID string
		quantity  int
	)
	cmd := &cobra.Command{
		Use:   "add-item <order-id>",
		Short: "Append a product to an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID = strings.TrimSpace(productID)
			if productID == "" {
				return errors.New("--product is required")
			}
			if quantity < 1 {
				return errors.New("quantity must be >= 1")
			}
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				found, err := s.Ledger.AddLineItem(ctx, args[0], productID, quantity)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("order %s or product %s: %w", args[0], productID, errNotFound)
				}
				o, _ := s.Ledger.Get(args[0])
				success(cmd, "Order %s total is now %s.", o.OrderID, money(o.TotalAmount))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&productID, "product", "", "product id")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "quantity")
	return cmd
}

func newOrdersDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				found, err := s.Ledger.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("order %s: %w", args[0], errNotFound)
				}
				success(cmd, "Order %s deleted.", args[0])
				return nil
			})
		},
	}
}

func newOrdersTotalsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "totals <customer-id>",
		Short: "Sum the line items of every order placed by a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(_ context.Context, s *shop.Shop) error {
				total, ok := s.Ledger.CustomerTotal(args[0])
				if !ok {
					return fmt.Errorf("orders for customer %s: %w", args[0], errNotFound)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[0], money(total))
				return nil
			})
		},
	}
}

func newOrdersInvoiceCmd(e *env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "invoice <order-id>",
		Short: "Render the PDF bill for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				doc, err := s.Invoices().Generate(ctx, args[0])
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = doc.FileName
				}
				if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				success(cmd, "Wrote %s.", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default "+invoice.FileName("<order-id>")+")")
	return cmd
}
