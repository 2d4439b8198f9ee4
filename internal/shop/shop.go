// Package shop owns the three record collections of one business.
package shop

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"BizRecords/internal/catalog"
	"BizRecords/internal/customer"
	"BizRecords/internal/invoice"
	"BizRecords/internal/order"
	"BizRecords/internal/recordstore"
	"BizRecords/pkg/kit"
)

type Shop struct {
	Backend   recordstore.Backend
	Catalog   *catalog.Catalog
	Directory *customer.Directory
	Ledger    *order.Ledger
	Log       *zap.Logger
}

// Open loads every collection from b, creating absent ones as empty.
// The shop takes ownership of b and closes it in Close.
func Open(ctx context.Context, b recordstore.Backend, log *zap.Logger) (*Shop, error) {
	log = kit.OrNop(log)

	products, err := catalog.Open(ctx, b, log)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", catalog.Collection, err)
	}
	customers, err := customer.Open(ctx, b, log)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", customer.Collection, err)
	}
	orders, err := order.Open(ctx, b, products, log)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", order.Collection, err)
	}

	return &Shop{
		Backend:   b,
		Catalog:   products,
		Directory: customers,
		Ledger:    orders,
		Log:       log,
	}, nil
}

// Invoices returns an invoice service reading from this shop.
func (s *Shop) Invoices() *invoice.Service {
	return &invoice.Service{
		Orders:    s.Ledger,
		Customers: s.Directory,
		Products:  s.Catalog,
		Log:       s.Log,
	}
}

func (s *Shop) Ping(ctx context.Context) error {
	return s.Backend.Ping(ctx)
}

func (s *Shop) Close() error {
	return s.Backend.Close()
}
