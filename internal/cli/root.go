// Package cli implements the bizctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"BizRecords/internal/config"
	"BizRecords/internal/recordstore"
	"BizRecords/internal/shop"
	"BizRecords/pkg/kit"
)

var (
	version = "dev"
	commit  = "none"
)

// env carries the global flags shared by every subcommand.
type env struct {
	driver   string
	dataDir  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "bizctl",
		Short:         "Manage products, customers and orders",
		Long:          "bizctl edits the business record collections directly on the configured store and renders invoices and spreadsheet exports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&e.driver, "driver", "", "store driver (file, memory, postgres, mongo); overrides config")
	cmd.PersistentFlags().StringVar(&e.dataDir, "data-dir", "", "directory for the file driver; overrides config")
	cmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "warn", "log level written to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newProductsCmd(e))
	cmd.AddCommand(newCustomersCmd(e))
	cmd.AddCommand(newOrdersCmd(e))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show bizctl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "bizctl %s (%s)\n", version, commit)
			return nil
		},
	}
}

// withShop opens the configured store, runs fn and closes the store.
func (e *env) withShop(cmd *cobra.Command, fn func(ctx context.Context, s *shop.Shop) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if e.driver != "" {
		cfg.Store.Driver = e.driver
	}
	if e.dataDir != "" {
		cfg.Store.DataDir = e.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := kit.NewLogger("bizctl", e.logLevel)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := recordstore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	s, err := shop.Open(ctx, b, log)
	if err != nil {
		_ = b.Close()
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			log.Warn("close store", zap.Error(cerr))
		}
	}()

	return fn(ctx, s)
}
