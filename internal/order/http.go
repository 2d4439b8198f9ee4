package order

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"BizRecords/pkg/kit"
)

type Server struct {
	Ledger  *Ledger
	Log     *zap.Logger
	Metrics *kit.Metrics
}

type createReq struct {
	CustomerID string `json:"customer_id"`
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type totalResp struct {
	CustomerID  string          `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (s *Server) Register(r chi.Router) {
	r.Get("/orders", s.list)
	r.Post("/orders", s.create)
	r.Get("/orders/totals", s.total)
	r.Get("/orders/{id}", s.get)
	r.Delete("/orders/{id}", s.delete)
	r.Post("/orders/{id}/items", s.addItem)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	orders := ForCustomer(s.Ledger.List(), strings.TrimSpace(r.URL.Query().Get("customer_id")))
	kit.WriteJSON(w, http.StatusOK, kit.Latest(orders, kit.LatestParam(r, DefaultLatest)))
}

func (s *Server) total(w http.ResponseWriter, r *http.Request) {
	customerID := strings.TrimSpace(r.URL.Query().Get("customer_id"))
	if customerID == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "customer_id required", nil)
		return
	}

	total, ok := s.Ledger.CustomerTotal(customerID)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "no orders for customer", map[string]any{"customer_id": customerID})
		return
	}
	kit.WriteJSON(w, http.StatusOK, totalResp{CustomerID: customerID, TotalAmount: total})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, ok := s.Ledger.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "order not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "customer_id required", nil)
		return
	}

	o, err := s.Ledger.Create(r.Context(), customerID)
	if err != nil {
		s.serverError(w, r, "create order failed", err)
		return
	}
	s.Metrics.Mutation(Collection, "create")
	kit.WriteJSON(w, http.StatusCreated, o)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req addItemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	pid := strings.TrimSpace(req.ProductID)
	if pid == "" || req.Quantity < 1 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad item", nil)
		return
	}

	found, err := s.Ledger.AddLineItem(r.Context(), id, pid, req.Quantity)
	if err != nil {
		s.serverError(w, r, "add line item failed", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "order or product not found",
			map[string]any{"order_id": id, "product_id": pid})
		return
	}
	s.Metrics.Mutation(Collection, "add_item")

	o, _ := s.Ledger.Get(id)
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := s.Ledger.Delete(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "delete order failed", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "order not found", map[string]any{"id": id})
		return
	}
	s.Metrics.Mutation(Collection, "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	kit.OrNop(s.Log).Error(msg, zap.Error(err))
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
