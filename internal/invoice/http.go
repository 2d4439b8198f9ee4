package invoice

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BizRecords/pkg/kit"
)

type Server struct {
	Service *Service
	Limiter *kit.IPRateLimiter
	Log     *zap.Logger
	Metrics *kit.Metrics
}

func (s *Server) Register(r chi.Router) {
	rr := r
	if s.Limiter != nil {
		rr = r.With(s.Limiter.Middleware)
	}
	rr.Get("/orders/{id}/invoice", s.download)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.Service.Generate(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, ErrOrderNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "order not found", map[string]any{"id": id})
		return
	case errors.Is(err, ErrCustomerNotFound):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, ErrCustomerNotFound.Error(), map[string]any{"order_id": id})
		return
	default:
		kit.OrNop(s.Log).Error("render invoice failed", zap.Error(err), zap.String("order_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.Metrics.InvoiceRendered()
	kit.WriteAttachment(w, doc.FileName, doc.ContentType, doc.Data)
}
