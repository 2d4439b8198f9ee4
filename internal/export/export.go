// Package export writes collections as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"BizRecords/internal/catalog"
	"BizRecords/internal/customer"
	"BizRecords/internal/order"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	ProductsFile  = "products.xlsx"
	CustomersFile = "customers.xlsx"
	OrdersFile    = "orders.xlsx"

	defaultSheet = "Sheet1"
)

var (
	productHeader  = []any{"id", "name", "price", "quantity", "Total Price"}
	customerHeader = []any{"id", "name", "address", "mobile", "email"}
	orderHeader    = []any{"Order ID", "Customer ID", "Product ID", "Product Name", "Product Quantity", "Product Price", "Total Amount"}
)

func Products(w io.Writer, products []catalog.Product) error {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{p.ID, p.Name, p.Price.InexactFloat64(), p.Quantity, p.Total().InexactFloat64()})
	}
	return write(w, "Products", productHeader, rows)
}

func Customers(w io.Writer, customers []customer.Customer) error {
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{c.ID, c.Name, c.Address, c.Mobile, c.Email})
	}
	return write(w, "Customers", customerHeader, rows)
}

// Orders writes one spreadsheet row per line item, repeating the order total
// on each.
func Orders(w io.Writer, lines []order.Row) error {
	rows := make([][]any, 0, len(lines))
	for _, r := range lines {
		rows = append(rows, []any{
			r.OrderID, r.CustomerID, r.ProductID, r.ProductName,
			r.Quantity, r.Price.InexactFloat64(), r.TotalAmount.InexactFloat64(),
		})
	}
	return write(w, "Orders", orderHeader, rows)
}

func write(w io.Writer, sheet string, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}
