// Package invoice prices an order and renders it as a printable PDF bill.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"BizRecords/internal/customer"
	"BizRecords/internal/order"
)

const (
	dateLayout  = "02-01-2006"
	missingText = "N/A"
)

type Issuer struct {
	Name    string
	Address string
	Contact string
}

var DefaultIssuer = Issuer{
	Name:    "RevivingIndia",
	Address: "123 Street, City, Country, Zip Code",
	Contact: "Phone: (000) 000-0000",
}

var TaxRate = decimal.RequireFromString("0.0425")

type Line struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

type Invoice struct {
	Issuer       Issuer
	CustomerName string
	CustomerID   string
	OrderID      string
	Date         time.Time
	Lines        []Line
	Subtotal     decimal.Decimal
	TaxRate      decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// Build prices o for c as of at. Amounts round half away from zero to two
// places; the total is the sum of the rounded subtotal and rounded tax, so the
// printed figures always add up.
func Build(o order.Order, c customer.Customer, products order.ProductLookup, at time.Time) Invoice {
	inv := Invoice{
		Issuer:       DefaultIssuer,
		CustomerName: c.Name,
		CustomerID:   c.ID,
		OrderID:      o.OrderID,
		Date:         at,
		Lines:        make([]Line, 0, len(o.Products)),
		TaxRate:      TaxRate,
	}
	if inv.CustomerName == "" {
		inv.CustomerName = missingText
	}

	subtotal := decimal.Zero
	for _, li := range o.Products {
		amount := li.Amount()
		subtotal = subtotal.Add(amount)
		inv.Lines = append(inv.Lines, Line{
			Description: li.Describe(products),
			Quantity:    li.Quantity,
			UnitPrice:   li.Price,
			Amount:      amount,
		})
	}

	inv.Subtotal = subtotal.Round(2)
	inv.Tax = inv.Subtotal.Mul(inv.TaxRate).Round(2)
	inv.Total = inv.Subtotal.Add(inv.Tax)
	return inv
}

func (inv Invoice) DateString() string {
	return inv.Date.Format(dateLayout)
}

// Money formats d with exactly two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Percent formats a rate such as 0.0425 as "4.25%".
func Percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
