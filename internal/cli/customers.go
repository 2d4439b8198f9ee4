package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"BizRecords/internal/customer"
	"BizRecords/internal/export"
	"BizRecords/internal/shop"
)

func newCustomersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "c"},
		Short:   "View and edit the customer directory",
	}
	cmd.AddCommand(
		newCustomersViewCmd(e),
		newCustomersAddCmd(e),
		newCustomersUpdateCmd(e),
		newCustomersDeleteCmd(e),
		newExportCmd(e, "customers", export.CustomersFile, func(w io.Writer, s *shop.Shop) error {
			return export.Customers(w, s.Directory.List())
		}),
	)
	return cmd
}

func newCustomersViewCmd(e *env) *cobra.Command {
	var (
		latest     int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the newest customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(_ context.Context, s *shop.Shop) error {
				customers := s.Directory.Latest(latest)
				if jsonOutput {
					return renderJSON(cmd, customers)
				}
				fmt.Fprint(cmd.OutOrStdout(), customerTable(customers))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&latest, "latest", "n", customer.DefaultLatest, "number of newest customers to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

type customerFlags struct {
	name    string
	address string
	mobile  string
	email   string
}

func (f *customerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "customer name")
	cmd.Flags().StringVar(&f.address, "address", "", "postal address")
	cmd.Flags().StringVar(&f.mobile, "mobile", "", "mobile number")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
}

func (f *customerFlags) apply(cmd *cobra.Command, c *customer.Customer) error {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = strings.TrimSpace(v)
		}
	}
	set("name", &c.Name, f.name)
	set("address", &c.Address, f.address)
	set("mobile", &c.Mobile, f.mobile)
	set("email", &c.Email, f.email)

	if c.Name == "" {
		return errors.New("customer name is required")
	}
	return nil
}

func newCustomersAddCmd(e *env) *cobra.Command {
	f := &customerFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer; the id is generated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c customer.Customer
			if err := f.apply(cmd, &c); err != nil {
				return err
			}
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				created, err := s.Directory.Add(ctx, c)
				if err != nil {
					return err
				}
				success(cmd, "Customer %s added.", created.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newCustomersUpdateCmd(e *env) *cobra.Command {
	f := &customerFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the fields of an existing customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				c, ok := s.Directory.Get(args[0])
				if !ok {
					return fmt.Errorf("customer %s: %w", args[0], errNotFound)
				}
				if err := f.apply(cmd, &c); err != nil {
					return err
				}
				found, err := s.Directory.Update(ctx, c)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("customer %s: %w", args[0], errNotFound)
				}
				success(cmd, "Customer %s updated.", c.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newCustomersDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withShop(cmd, func(ctx context.Context, s *shop.Shop) error {
				found, err := s.Directory.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("customer %s: %w", args[0], errNotFound)
				}
				success(cmd, "Customer %s deleted.", args[0])
				return nil
			})
		},
	}
}
