package order_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BizRecords/internal/catalog"
	"BizRecords/internal/order"
	"BizRecords/internal/recordstore"
)

type fixture struct {
	backend *recordstore.MemBackend
	catalog *catalog.Catalog
	ledger  *order.Ledger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	b := recordstore.NewMemBackend()

	c, err := catalog.Open(ctx, b, nil)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, catalog.Product{ID: "p1", Name: "Keyboard", Price: dec("10.00"), Quantity: 5}))
	require.NoError(t, c.Add(ctx, catalog.Product{ID: "p2", Name: "Mouse", Price: dec("2.35"), Quantity: 9}))

	l, err := order.Open(ctx, b, c, nil)
	require.NoError(t, err)
	return fixture{backend: b, catalog: c, ledger: l}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireTotalMatchesItems(t *testing.T, o order.Order) {
	t.Helper()
	require.True(t, o.TotalAmount.Equal(o.Sum()), "total=%s sum=%s", o.TotalAmount, o.Sum())
}

func TestLedger_CreateStartsEmpty(t *testing.T) {
	f := newFixture(t)

	o, err := f.ledger.Create(context.Background(), "c001")
	require.NoError(t, err)
	assert.NotEmpty(t, o.OrderID)
	assert.Equal(t, "c001", o.CustomerID)
	assert.Empty(t, o.Products)
	assert.True(t, o.TotalAmount.IsZero())

	got, ok := f.ledger.Get(o.OrderID)
	require.True(t, ok)
	assert.Equal(t, o.OrderID, got.OrderID)
}

func TestLedger_CreateDoesNotRequireCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Create(context.Background(), "does-not-exist")
	assert.NoError(t, err)
}

func TestLedger_TotalTracksLineItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, err := f.ledger.Create(ctx, "c001")
	require.NoError(t, err)

	steps := []struct {
		productID string
		qty       int
		want      string
	}{
		{"p1", 3, "30"},
		{"p2", 2, "34.7"},
		{"p1", 1, "44.7"},
	}
	for _, st := range steps {
		ok, err := f.ledger.AddLineItem(ctx, o.OrderID, st.productID, st.qty)
		require.NoError(t, err)
		require.True(t, ok)

		got, _ := f.ledger.Get(o.OrderID)
		requireTotalMatchesItems(t, got)
		assert.Equal(t, st.want, got.TotalAmount.String())
	}

	got, _ := f.ledger.Get(o.OrderID)
	require.Len(t, got.Products, 3)
	assert.Equal(t, "p1", got.Products[0].ProductID)
	assert.Equal(t, "p1", got.Products[2].ProductID)
}

func TestLedger_AddLineItemUnknownIDsChangeNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, err := f.ledger.Create(ctx, "c001")
	require.NoError(t, err)
	before, _, _ := f.backend.Read(ctx, order.Collection)

	ok, err := f.ledger.AddLineItem(ctx, "missing", "p1", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.ledger.AddLineItem(ctx, o.OrderID, "missing", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	after, _, _ := f.backend.Read(ctx, order.Collection)
	assert.Equal(t, before, after)

	got, _ := f.ledger.Get(o.OrderID)
	assert.Empty(t, got.Products)
}

func TestLedger_LineItemsAreSnapshots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, err := f.ledger.Create(ctx, "c001")
	require.NoError(t, err)
	_, err = f.ledger.AddLineItem(ctx, o.OrderID, "p1", 2)
	require.NoError(t, err)

	_, err = f.catalog.Update(ctx, catalog.Product{ID: "p1", Name: "Renamed", Price: dec("99.99"), Quantity: 1})
	require.NoError(t, err)

	got, _ := f.ledger.Get(o.OrderID)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Keyboard", got.Products[0].Name)
	assert.Equal(t, "10", got.Products[0].Price.String())
	assert.Equal(t, "20", got.TotalAmount.String())

	_, err = f.catalog.Delete(ctx, "p1")
	require.NoError(t, err)

	ok, err := f.ledger.AddLineItem(ctx, o.OrderID, "p1", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ = f.ledger.Get(o.OrderID)
	assert.Equal(t, "Keyboard", got.Products[0].Describe(f.catalog))
}

func TestLedger_DeleteUnknownIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.ledger.Create(ctx, "c001")
	require.NoError(t, err)

	ok, err := f.ledger.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.ledger.List(), 1)
}

func TestLedger_PersistThenReloadIsIdentical(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o1, err := f.ledger.Create(ctx, "c001")
	require.NoError(t, err)
	o2, err := f.ledger.Create(ctx, "c002")
	require.NoError(t, err)
	_, err = f.ledger.AddLineItem(ctx, o1.OrderID, "p1", 3)
	require.NoError(t, err)
	_, err = f.ledger.AddLineItem(ctx, o1.OrderID, "p2", 1)
	require.NoError(t, err)
	_, err = f.ledger.Delete(ctx, o2.OrderID)
	require.NoError(t, err)

	reloaded, err := order.Open(ctx, f.backend, f.catalog, nil)
	require.NoError(t, err)

	want, err := json.Marshal(f.ledger.List())
	require.NoError(t, err)
	got, err := json.Marshal(reloaded.List())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	for _, o := range reloaded.List() {
		requireTotalMatchesItems(t, o)
	}
}

func TestLedger_CustomerTotalAndFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a1, _ := f.ledger.Create(ctx, "a")
	b1, _ := f.ledger.Create(ctx, "b")
	a2, _ := f.ledger.Create(ctx, "a")
	_, _ = f.ledger.AddLineItem(ctx, a1.OrderID, "p1", 1)
	_, _ = f.ledger.AddLineItem(ctx, b1.OrderID, "p1", 5)
	_, _ = f.ledger.AddLineItem(ctx, a2.OrderID, "p2", 2)

	total, ok := f.ledger.CustomerTotal("a")
	require.True(t, ok)
	assert.Equal(t, "14.7", total.String())

	_, ok = f.ledger.CustomerTotal("nobody")
	assert.False(t, ok)

	filtered := order.ForCustomer(f.ledger.List(), "a")
	require.Len(t, filtered, 2)
	assert.Equal(t, a1.OrderID, filtered[0].OrderID)
	assert.Len(t, order.ForCustomer(f.ledger.List(), ""), 3)
}

func TestRows_FlattenAndDescribe(t *testing.T) {
	orders := []order.Order{
		{
			OrderID:    "o1",
			CustomerID: "c1",
			Products: []order.LineItem{
				{ProductID: "p1", Name: "Cached", Quantity: 2, Price: dec("1.50")},
				{ProductID: "p2", Quantity: 1, Price: dec("2.35")},
				{ProductID: "gone", Quantity: 1, Price: dec("1")},
			},
			TotalAmount: dec("6.35"),
		},
		{OrderID: "o2", CustomerID: "c2", Products: []order.LineItem{}},
	}

	f := newFixture(t)
	rows := order.Rows(orders, f.catalog)
	require.Len(t, rows, 3)
	assert.Equal(t, "Cached", rows[0].ProductName)
	assert.Equal(t, "Mouse", rows[1].ProductName)
	assert.Equal(t, "N/A", rows[2].ProductName)
	assert.Equal(t, "6.35", rows[2].TotalAmount.String())
}

func TestLedger_OpenToleratesNumericIDs(t *testing.T) {
	ctx := context.Background()
	b := recordstore.NewMemBackend()
	require.NoError(t, b.Write(ctx, catalog.Collection, []byte(`[{"id": 7, "name": "Pen", "price": 2.5, "quantity": 3}]`)))
	require.NoError(t, b.Write(ctx, order.Collection, []byte(`[
		{"order_id": 42, "customer_id": 9, "products": [
			{"product_id": 7, "name": "Pen", "quantity": 2, "price": 2.5}
		], "total_amount": 5.0}
	]`)))

	c, err := catalog.Open(ctx, b, nil)
	require.NoError(t, err)
	l, err := order.Open(ctx, b, c, nil)
	require.NoError(t, err)

	o, ok := l.Get("42")
	require.True(t, ok)
	assert.Equal(t, "9", o.CustomerID)
	require.Len(t, o.Products, 1)
	assert.Equal(t, "7", o.Products[0].ProductID)

	found, err := l.AddLineItem(ctx, "42", "7", 1)
	require.NoError(t, err)
	require.True(t, found)

	o, _ = l.Get("42")
	assert.Equal(t, "7.5", o.TotalAmount.String())
	requireTotalMatchesItems(t, o)

	total, ok := l.CustomerTotal("9")
	require.True(t, ok)
	assert.Equal(t, "7.5", total.String())
}
