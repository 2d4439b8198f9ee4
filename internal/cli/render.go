package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"BizRecords/internal/catalog"
	"BizRecords/internal/customer"
	"BizRecords/internal/order"
)

var (
	accent = lipgloss.Color("#D97706")
	dim    = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
)

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return dimStyle.Render("(no records)") + "\n"
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String() + "\n"
}

func productTable(products []catalog.Product) string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, p.Name, money(p.Price), strconv.Itoa(p.Quantity), money(p.Total())})
	}
	return renderTable([]string{"ID", "NAME", "PRICE", "QTY", "TOTAL"}, rows)
}

func customerTable(customers []customer.Customer) string {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{c.ID, c.Name, c.Address, c.Mobile, c.Email})
	}
	return renderTable([]string{"ID", "NAME", "ADDRESS", "MOBILE", "EMAIL"}, rows)
}

func orderTable(lines []order.Row) string {
	rows := make([][]string, 0, len(lines))
	for _, r := range lines {
		rows = append(rows, []string{
			r.OrderID, r.CustomerID, r.ProductID, r.ProductName,
			strconv.Itoa(r.Quantity), money(r.Price), money(r.TotalAmount),
		})
	}
	return renderTable([]string{"ORDER", "CUSTOMER", "PRODUCT", "NAME", "QTY", "PRICE", "ORDER TOTAL"}, rows)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf(format, args...)))
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFile creates path and streams write into it.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
