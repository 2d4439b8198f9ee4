package customer

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BizRecords/pkg/kit"
)

type Server struct {
	Directory *Directory
	Log       *zap.Logger
	Metrics   *kit.Metrics
}

type customerReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
}

func (s *Server) Register(r chi.Router) {
	r.Get("/customers", s.list)
	r.Post("/customers", s.create)
	r.Get("/customers/{id}", s.get)
	r.Put("/customers/{id}", s.update)
	r.Delete("/customers/{id}", s.delete)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Directory.Latest(kit.LatestParam(r, DefaultLatest)))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, ok := s.Directory.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "customer not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c, ok := s.decode(w, r)
	if !ok {
		return
	}

	created, err := s.Directory.Add(r.Context(), c)
	if err != nil {
		s.serverError(w, r, "add customer failed", err)
		return
	}
	s.Metrics.Mutation(Collection, "add")
	kit.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	c, ok := s.decode(w, r)
	if !ok {
		return
	}
	c.ID = chi.URLParam(r, "id")

	found, err := s.Directory.Update(r.Context(), c)
	if err != nil {
		s.serverError(w, r, "update customer failed", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "customer not found", map[string]any{"id": c.ID})
		return
	}
	s.Metrics.Mutation(Collection, "update")
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := s.Directory.Delete(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "delete customer failed", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "customer not found", map[string]any{"id": id})
		return
	}
	s.Metrics.Mutation(Collection, "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Customer, bool) {
	var req customerReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return Customer{}, false
	}

	c := Customer{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Mobile:  strings.TrimSpace(req.Mobile),
		Email:   strings.TrimSpace(req.Email),
	}
	if c.Name == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "name required", nil)
		return Customer{}, false
	}
	return c, true
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	kit.OrNop(s.Log).Error(msg, zap.Error(err))
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
