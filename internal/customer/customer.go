// Package customer manages the customer directory.
package customer

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"go.uber.org/zap"

	"BizRecords/internal/recordstore"
	"BizRecords/pkg/kit"
)

const (
	Collection    = "customers"
	DefaultLatest = 5
)

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
}

func (c *Customer) UnmarshalJSON(data []byte) error {
	type plain Customer
	var v struct {
		plain
		ID recordstore.ID `json:"id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Customer(v.plain)
	c.ID = string(v.ID)
	return nil
}

type Directory struct {
	mu        sync.RWMutex
	backend   recordstore.Backend
	log       *zap.Logger
	customers []Customer
}

func Open(ctx context.Context, b recordstore.Backend, log *zap.Logger) (*Directory, error) {
	customers, err := recordstore.Load(ctx, b, Collection, []Customer{})
	if err != nil {
		return nil, err
	}
	return &Directory{backend: b, log: kit.OrNop(log), customers: customers}, nil
}

// Add stores c under a freshly generated id and returns the stored record.
// Any id on c is ignored.
func (d *Directory) Add(ctx context.Context, c Customer) (Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, err := kit.NewShortID(func(id string) bool { return d.index(id) >= 0 })
	if err != nil {
		return Customer{}, err
	}
	c.ID = id

	next := append(slices.Clone(d.customers), c)
	if err := d.commit(ctx, next); err != nil {
		return Customer{}, err
	}

	d.log.Info("customer added", zap.String("customer_id", id))
	return c, nil
}

func (d *Directory) Update(ctx context.Context, c Customer) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(c.ID)
	if i < 0 {
		d.log.Debug("customer not found", zap.String("customer_id", c.ID))
		return false, nil
	}

	next := slices.Clone(d.customers)
	next[i] = c
	if err := d.commit(ctx, next); err != nil {
		return false, err
	}

	d.log.Info("customer updated", zap.String("customer_id", c.ID))
	return true, nil
}

func (d *Directory) Delete(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(id)
	if i < 0 {
		d.log.Debug("customer not found", zap.String("customer_id", id))
		return false, nil
	}

	next := slices.Delete(slices.Clone(d.customers), i, i+1)
	if err := d.commit(ctx, next); err != nil {
		return false, err
	}

	d.log.Info("customer deleted", zap.String("customer_id", id))
	return true, nil
}

func (d *Directory) Get(id string) (Customer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i := d.index(id)
	if i < 0 {
		return Customer{}, false
	}
	return d.customers[i], true
}

func (d *Directory) List() []Customer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.customers)
}

func (d *Directory) Latest(n int) []Customer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return kit.Latest(d.customers, n)
}

func (d *Directory) commit(ctx context.Context, next []Customer) error {
	if err := recordstore.Save(ctx, d.backend, Collection, next); err != nil {
		d.log.Error("persist customers failed", zap.Error(err))
		return err
	}
	d.customers = next
	return nil
}

func (d *Directory) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(d.customers, func(c Customer) bool { return c.ID == id })
}
