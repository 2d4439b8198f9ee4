package export

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BizRecords/internal/catalog"
	"BizRecords/internal/customer"
	"BizRecords/internal/order"
	"BizRecords/pkg/kit"
)

type Server struct {
	Catalog   *catalog.Catalog
	Directory *customer.Directory
	Ledger    *order.Ledger
	Log       *zap.Logger
}

func (s *Server) Register(r chi.Router) {
	r.Get("/products/export", s.serve(ProductsFile, func(w io.Writer) error {
		return Products(w, s.Catalog.List())
	}))
	r.Get("/customers/export", s.serve(CustomersFile, func(w io.Writer) error {
		return Customers(w, s.Directory.List())
	}))
	r.Get("/orders/export", s.serve(OrdersFile, func(w io.Writer) error {
		return Orders(w, order.Rows(s.Ledger.List(), s.Catalog))
	}))
}

func (s *Server) serve(fileName string, build func(io.Writer) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := build(&buf); err != nil {
			kit.OrNop(s.Log).Error("export failed", zap.Error(err), zap.String("file", fileName))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
		kit.WriteAttachment(w, fileName, ContentType, buf.Bytes())
	}
}
