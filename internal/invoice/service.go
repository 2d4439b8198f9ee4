package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"BizRecords/internal/customer"
	"BizRecords/internal/order"
	"BizRecords/pkg/kit"
)

const ContentType = "application/pdf"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer information not found")
)

type OrderSource interface {
	Get(orderID string) (order.Order, bool)
}

type CustomerSource interface {
	Get(id string) (customer.Customer, bool)
}

type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

func FileName(orderID string) string {
	return "bill_order_" + orderID + ".pdf"
}

// Service resolves an order and its customer and renders the bill. It never
// writes to the collections it reads.
type Service struct {
	Orders    OrderSource
	Customers CustomerSource
	Products  order.ProductLookup
	Now       func() time.Time
	Log       *zap.Logger
}

func (s *Service) Generate(ctx context.Context, orderID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	o, ok := s.Orders.Get(orderID)
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	c, ok := s.Customers.Get(o.CustomerID)
	if !ok {
		kit.OrNop(s.Log).Warn("invoice customer missing",
			zap.String("order_id", orderID), zap.String("customer_id", o.CustomerID))
		return Document{}, fmt.Errorf("%w: order %s references customer %q", ErrCustomerNotFound, orderID, o.CustomerID)
	}

	inv := Build(o, c, s.Products, s.now())
	data, err := RenderPDF(inv)
	if err != nil {
		return Document{}, fmt.Errorf("render invoice %s: %w", orderID, err)
	}

	return Document{
		FileName:    FileName(orderID),
		ContentType: ContentType,
		Data:        data,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
