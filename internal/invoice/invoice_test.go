package invoice_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BizRecords/internal/catalog"
	"BizRecords/internal/customer"
	"BizRecords/internal/invoice"
	"BizRecords/internal/order"
	"BizRecords/internal/recordstore"
)

var renderAt = time.Date(2024, time.March, 7, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBuild_LiteralExample(t *testing.T) {
	o := order.Order{
		OrderID:    "o1",
		CustomerID: "c1",
		Products: []order.LineItem{
			{ProductID: "p1", Name: "Widget", Quantity: 3, Price: dec("10.00")},
		},
		TotalAmount: dec("30.00"),
	}
	c := customer.Customer{ID: "c1", Name: "Asha"}

	inv := invoice.Build(o, c, nil, renderAt)

	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "Widget", inv.Lines[0].Description)
	assert.Equal(t, "10.00", invoice.Money(inv.Lines[0].UnitPrice))
	assert.Equal(t, "30.00", invoice.Money(inv.Lines[0].Amount))
	assert.Equal(t, "30.00", invoice.Money(inv.Subtotal))
	assert.Equal(t, "1.28", invoice.Money(inv.Tax))
	assert.Equal(t, "31.28", invoice.Money(inv.Total))
	assert.Equal(t, "4.25%", invoice.Percent(inv.TaxRate))
	assert.Equal(t, "07-03-2024", inv.DateString())
	assert.Equal(t, "Asha", inv.CustomerName)
	assert.Equal(t, "c1", inv.CustomerID)
	assert.Equal(t, "o1", inv.OrderID)
	assert.Equal(t, invoice.DefaultIssuer, inv.Issuer)
}

func TestBuild_SumsAllLines(t *testing.T) {
	o := order.Order{
		OrderID: "o1",
		Products: []order.LineItem{
			{ProductID: "p1", Name: "A", Quantity: 2, Price: dec("1.99")},
			{ProductID: "p2", Name: "B", Quantity: 1, Price: dec("0.015")},
			{ProductID: "p1", Name: "A", Quantity: 1, Price: dec("1.99")},
		},
	}

	inv := invoice.Build(o, customer.Customer{ID: "c"}, nil, renderAt)

	assert.Equal(t, "5.99", invoice.Money(inv.Subtotal))
	assert.Equal(t, "0.25", invoice.Money(inv.Tax))
	assert.Equal(t, "6.24", invoice.Money(inv.Total))
	assert.Equal(t, "N/A", inv.CustomerName)
}

func TestBuild_EmptyOrder(t *testing.T) {
	inv := invoice.Build(order.Order{OrderID: "o1"}, customer.Customer{ID: "c", Name: "x"}, nil, renderAt)
	assert.Empty(t, inv.Lines)
	assert.Equal(t, "0.00", invoice.Money(inv.Total))
}

func TestBuild_DescriptionFallsBackToCatalog(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.Open(ctx, recordstore.NewMemBackend(), nil)
	require.NoError(t, err)
	require.NoError(t, cat.Add(ctx, catalog.Product{ID: "p1", Name: "Live Name", Price: dec("1"), Quantity: 1}))

	o := order.Order{OrderID: "o1", Products: []order.LineItem{
		{ProductID: "p1", Quantity: 1, Price: dec("1")},
		{ProductID: "gone", Quantity: 1, Price: dec("1")},
	}}

	inv := invoice.Build(o, customer.Customer{ID: "c"}, cat, renderAt)
	assert.Equal(t, "Live Name", inv.Lines[0].Description)
	assert.Equal(t, "N/A", inv.Lines[1].Description)
}

func TestRenderPDF_DeterministicForSameTimestamp(t *testing.T) {
	o := order.Order{OrderID: "o1", Products: []order.LineItem{
		{ProductID: "p1", Name: "Café crème", Quantity: 2, Price: dec("3.50")},
	}}
	inv := invoice.Build(o, customer.Customer{ID: "c1", Name: "Zoë"}, nil, renderAt)

	a, err := invoice.RenderPDF(inv)
	require.NoError(t, err)
	b, err := invoice.RenderPDF(inv)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(a, []byte("%PDF-")))
	assert.Equal(t, a, b)

	inv.Date = renderAt.Add(24 * time.Hour)
	c, err := invoice.RenderPDF(inv)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

type env struct {
	catalog   *catalog.Catalog
	directory *customer.Directory
	ledger    *order.Ledger
	service   *invoice.Service
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	b := recordstore.NewMemBackend()

	cat, err := catalog.Open(ctx, b, nil)
	require.NoError(t, err)
	dir, err := customer.Open(ctx, b, nil)
	require.NoError(t, err)
	led, err := order.Open(ctx, b, cat, nil)
	require.NoError(t, err)

	return env{
		catalog:   cat,
		directory: dir,
		ledger:    led,
		service: &invoice.Service{
			Orders:    led,
			Customers: dir,
			Products:  cat,
			Now:       func() time.Time { return renderAt },
		},
	}
}

func TestService_OrderNotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.service.Generate(context.Background(), "missing")
	assert.ErrorIs(t, err, invoice.ErrOrderNotFound)
}

func TestService_MissingCustomerReference(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	c, err := e.directory.Add(ctx, customer.Customer{Name: "Asha"})
	require.NoError(t, err)
	o, err := e.ledger.Create(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.directory.Delete(ctx, c.ID)
	require.NoError(t, err)

	_, err = e.service.Generate(ctx, o.OrderID)
	assert.ErrorIs(t, err, invoice.ErrCustomerNotFound)

	_, ok := e.ledger.Get(o.OrderID)
	assert.True(t, ok)
}

func TestService_SnapshotSurvivesProductDeletion(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.catalog.Add(ctx, catalog.Product{ID: "p1", Name: "Keyboard", Price: dec("10.00"), Quantity: 5}))
	require.NoError(t, e.catalog.Add(ctx, catalog.Product{ID: "p2", Name: "Mouse", Price: dec("5.00"), Quantity: 5}))

	c, err := e.directory.Add(ctx, customer.Customer{Name: "Asha"})
	require.NoError(t, err)
	o, err := e.ledger.Create(ctx, c.ID)
	require.NoError(t, err)

	ok, err := e.ledger.AddLineItem(ctx, o.OrderID, "p1", 3)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = e.ledger.AddLineItem(ctx, o.OrderID, "p2", 1)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.catalog.Delete(ctx, "p1")
	require.NoError(t, err)

	stored, _ := e.ledger.Get(o.OrderID)
	inv := invoice.Build(stored, c, e.catalog, renderAt)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, "Keyboard", inv.Lines[0].Description)
	assert.Equal(t, "10.00", invoice.Money(inv.Lines[0].UnitPrice))
	assert.Equal(t, "35.00", invoice.Money(inv.Subtotal))

	doc, err := e.service.Generate(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "bill_order_"+o.OrderID+".pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))

	ok, err = e.ledger.AddLineItem(ctx, o.OrderID, "p1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_RenderingDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.catalog.Add(ctx, catalog.Product{ID: "p1", Name: "Keyboard", Price: dec("10.00"), Quantity: 5}))
	c, err := e.directory.Add(ctx, customer.Customer{Name: "Asha"})
	require.NoError(t, err)
	o, err := e.ledger.Create(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.ledger.AddLineItem(ctx, o.OrderID, "p1", 1)
	require.NoError(t, err)

	before := e.ledger.List()
	first, err := e.service.Generate(ctx, o.OrderID)
	require.NoError(t, err)
	second, err := e.service.Generate(ctx, o.OrderID)
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, before, e.ledger.List())
}
