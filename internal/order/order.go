// Package order keeps the order ledger. Line items copy the product name and
// price at the moment they are added; later catalog edits or deletions never
// change an existing order.
package order

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"BizRecords/internal/catalog"
	"BizRecords/internal/recordstore"
	"BizRecords/pkg/kit"
)

const (
	Collection    = "orders"
	DefaultLatest = 10

	unknownProduct = "N/A"
)

type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Amount is quantity × price.
func (li LineItem) Amount() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	type plain LineItem
	var v struct {
		plain
		ProductID recordstore.ID `json:"product_id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*li = LineItem(v.plain)
	li.ProductID = string(v.ProductID)
	return nil
}

// Describe returns the cached name, falling back to the live catalog entry
// and then to "N/A" for items stored without a name.
func (li LineItem) Describe(products ProductLookup) string {
	if li.Name != "" {
		return li.Name
	}
	if products != nil {
		if p, ok := products.Get(li.ProductID); ok && p.Name != "" {
			return p.Name
		}
	}
	return unknownProduct
}

type Order struct {
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	Products    []LineItem      `json:"products"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// UnmarshalJSON accepts numeric order and customer ids in persisted
// collections.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var v struct {
		plain
		OrderID    recordstore.ID `json:"order_id"`
		CustomerID recordstore.ID `json:"customer_id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Order(v.plain)
	o.OrderID = string(v.OrderID)
	o.CustomerID = string(v.CustomerID)
	return nil
}

// Sum recomputes the order total from its line items.
func (o Order) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Products {
		total = total.Add(li.Amount())
	}
	return total
}

type ProductLookup interface {
	Get(id string) (catalog.Product, bool)
}

type Ledger struct {
	mu       sync.RWMutex
	backend  recordstore.Backend
	products ProductLookup
	log      *zap.Logger
	orders   []Order
}

func Open(ctx context.Context, b recordstore.Backend, products ProductLookup, log *zap.Logger) (*Ledger, error) {
	orders, err := recordstore.Load(ctx, b, Collection, []Order{})
	if err != nil {
		return nil, err
	}
	return &Ledger{backend: b, products: products, log: kit.OrNop(log), orders: orders}, nil
}

// Create opens an empty order for customerID. The customer is not required
// to exist.
func (l *Ledger) Create(ctx context.Context, customerID string) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := kit.NewShortID(func(id string) bool { return l.index(id) >= 0 })
	if err != nil {
		return Order{}, err
	}

	o := Order{
		OrderID:     id,
		CustomerID:  customerID,
		Products:    []LineItem{},
		TotalAmount: decimal.Zero,
	}

	next := append(slices.Clone(l.orders), o)
	if err := l.commit(ctx, next); err != nil {
		return Order{}, err
	}

	l.log.Info("order created", zap.String("order_id", id), zap.String("customer_id", customerID))
	return o, nil
}

// AddLineItem appends a snapshot of the product to the order and grows its
// total. Repeated calls for the same product append separate items. It
// reports false, changing nothing, when either the order or the product is
// unknown.
func (l *Ledger) AddLineItem(ctx context.Context, orderID, productID string, quantity int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(orderID)
	if i < 0 {
		l.log.Debug("order not found", zap.String("order_id", orderID))
		return false, nil
	}
	p, ok := l.products.Get(productID)
	if !ok {
		l.log.Debug("product not found", zap.String("order_id", orderID), zap.String("product_id", productID))
		return false, nil
	}

	item := LineItem{
		ProductID: productID,
		Name:      p.Name,
		Quantity:  quantity,
		Price:     p.Price,
	}

	next := slices.Clone(l.orders)
	o := next[i]
	o.Products = append(slices.Clone(o.Products), item)
	o.TotalAmount = o.TotalAmount.Add(item.Amount())
	next[i] = o

	if err := l.commit(ctx, next); err != nil {
		return false, err
	}

	l.log.Info("line item added",
		zap.String("order_id", orderID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("total_amount", o.TotalAmount.String()),
	)
	return true, nil
}

func (l *Ledger) Delete(ctx context.Context, orderID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(orderID)
	if i < 0 {
		l.log.Debug("order not found", zap.String("order_id", orderID))
		return false, nil
	}

	next := slices.Delete(slices.Clone(l.orders), i, i+1)
	if err := l.commit(ctx, next); err != nil {
		return false, err
	}

	l.log.Info("order deleted", zap.String("order_id", orderID))
	return true, nil
}

func (l *Ledger) Get(orderID string) (Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.index(orderID)
	if i < 0 {
		return Order{}, false
	}
	return l.orders[i], true
}

func (l *Ledger) List() []Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.orders)
}

func (l *Ledger) Latest(n int) []Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return kit.Latest(l.orders, n)
}

// CustomerTotal sums the line amounts of every order placed by customerID.
// It reports false when the customer has no orders.
func (l *Ledger) CustomerTotal(customerID string) (decimal.Decimal, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total, found := decimal.Zero, false
	for _, o := range l.orders {
		if o.CustomerID != customerID {
			continue
		}
		found = true
		total = total.Add(o.Sum())
	}
	return total, found
}

func (l *Ledger) commit(ctx context.Context, next []Order) error {
	if err := recordstore.Save(ctx, l.backend, Collection, next); err != nil {
		l.log.Error("persist orders failed", zap.Error(err))
		return err
	}
	l.orders = next
	return nil
}

func (l *Ledger) index(orderID string) int {
	if orderID == "" {
		return -1
	}
	return slices.IndexFunc(l.orders, func(o Order) bool { return o.OrderID == orderID })
}

// ForCustomer keeps the orders placed by customerID. An empty customerID
// keeps everything. Views filter first and then take the newest N, so
// "latest 10" means the customer's own ten newest orders, not the matches
// among the ten newest orders overall.
func ForCustomer(orders []Order, customerID string) []Order {
	if customerID == "" {
		return orders
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

// Row is one line item flattened together with its order.
type Row struct {
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func Rows(orders []Order, products ProductLookup) []Row {
	out := make([]Row, 0, len(orders))
	for _, o := range orders {
		for _, li := range o.Products {
			out = append(out, Row{
				OrderID:     o.OrderID,
				CustomerID:  o.CustomerID,
				ProductID:   li.ProductID,
				ProductName: li.Describe(products),
				Quantity:    li.Quantity,
				Price:       li.Price,
				TotalAmount: o.TotalAmount,
			})
		}
	}
	return out
}
