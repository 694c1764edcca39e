package handler

import (
	"context"
	"net/http"

	"github.com/actuallystonmai/hybrid-recommender/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service  *service.Service
	validate *validator.Validate
	logger   *zap.Logger
	deps     map[string]Pinger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:  svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("handler"),
		deps:     make(map[string]Pinger),
	}
}

// AddDependency registers a dependency checked by the health endpoint.
func (h *Handler) AddDependency(name string, p Pinger) {
	h.deps[name] = p
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
