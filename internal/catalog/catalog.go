// Package catalog manages the product collection.
package catalog

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"BizRecords/internal/recordstore"
	"BizRecords/pkg/kit"
)

const (
	Collection    = "products"
	DefaultLatest = 5
)

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Total is the stock value of the product (price × quantity).
func (p Product) Total() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// UnmarshalJSON accepts numeric ids in persisted collections.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var v struct {
		plain
		ID recordstore.ID `json:"id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Product(v.plain)
	p.ID = string(v.ID)
	return nil
}

// Catalog holds the product collection in memory and mirrors every change to
// the backend before returning. Lookups are linear and return the first match
// in insertion order; duplicate ids are accepted on Add.
type Catalog struct {
	mu       sync.RWMutex
	backend  recordstore.Backend
	log      *zap.Logger
	products []Product
}

func Open(ctx context.Context, b recordstore.Backend, log *zap.Logger) (*Catalog, error) {
	products, err := recordstore.Load(ctx, b, Collection, []Product{})
	if err != nil {
		return nil, err
	}
	return &Catalog{backend: b, log: kit.OrNop(log), products: products}, nil
}

func (c *Catalog) Add(ctx context.Context, p Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := append(slices.Clone(c.products), p)
	if err := c.commit(ctx, next); err != nil {
		return err
	}

	c.log.Info("product added", zap.String("product_id", p.ID))
	return nil
}

// Update replaces name, price and quantity of the first product with p.ID.
func (c *Catalog) Update(ctx context.Context, p Product) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(p.ID)
	if i < 0 {
		c.log.Debug("product not found", zap.String("product_id", p.ID))
		return false, nil
	}

	next := slices.Clone(c.products)
	next[i].Name = p.Name
	next[i].Price = p.Price
	next[i].Quantity = p.Quantity
	if err := c.commit(ctx, next); err != nil {
		return false, err
	}

	c.log.Info("product updated", zap.String("product_id", p.ID))
	return true, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		c.log.Debug("product not found", zap.String("product_id", id))
		return false, nil
	}

	next := slices.Delete(slices.Clone(c.products), i, i+1)
	if err := c.commit(ctx, next); err != nil {
		return false, err
	}

	c.log.Info("product deleted", zap.String("product_id", id))
	return true, nil
}

func (c *Catalog) Get(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.index(id)
	if i < 0 {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

func (c *Catalog) Latest(n int) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return kit.Latest(c.products, n)
}

func (c *Catalog) commit(ctx context.Context, next []Product) error {
	if err := recordstore.Save(ctx, c.backend, Collection, next); err != nil {
		c.log.Error("persist products failed", zap.Error(err))
		return err
	}
	c.products = next
	return nil
}

// index must be called with c.mu held. Records without an id never match.
func (c *Catalog) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.products, func(p Product) bool { return p.ID == id })
}
