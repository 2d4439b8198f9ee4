package catalog

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"BizRecords/pkg/kit"
)

type Server struct {
	Catalog *Catalog
	Log     *zap.Logger
	Metrics *kit.Metrics
}

type productReq struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (s *Server) Register(r chi.Router) {
	r.Get("/products", s.list)
	r.Post("/products", s.create)
	r.Get("/products/{id}", s.get)
	r.Put("/products/{id}", s.update)
	r.Delete("/products/{id}", s.delete)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Latest(kit.LatestParam(r, DefaultLatest)))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.Catalog.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	p, msg := req.product()
	if p.ID == "" {
		msg = "id required"
	}
	if msg != "" {
		kit.WriteError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	if err := s.Catalog.Add(r.Context(), p); err != nil {
		s.serverError(w, r, "add product failed", err)
		return
	}
	s.Metrics.Mutation(Collection, "add")
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	req.ID = chi.URLParam(r, "id")
	p, msg := req.product()
	if msg != "" {
		kit.WriteError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	found, err := s.Catalog.Update(r.Context(), p)
	if err != nil {
		s.serverError(w, r, "update product failed", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": p.ID})
		return
	}
	s.Metrics.Mutation(Collection, "update")
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := s.Catalog.Delete(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "delete product failed", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": id})
		return
	}
	s.Metrics.Mutation(Collection, "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	kit.OrNop(s.Log).Error(msg, zap.Error(err))
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func (req productReq) product() (Product, string) {
	p := Product{
		ID:       strings.TrimSpace(req.ID),
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	switch {
	case p.Name == "":
		return p, "name required"
	case p.Price.IsNegative():
		return p, "price must be >= 0"
	case p.Quantity < 1:
		return p, "quantity must be >= 1"
	}
	return p, ""
}
