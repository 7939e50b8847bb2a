package branches

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ekid-reports/ekid/internal/platform/httpx"
)

// Handler manages branch endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers branch routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type branchResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list branches", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]branchResponse, len(list))
	for i, b := range list {
		out[i] = branchResponse{ID: b.ID, Name: b.Name, Kind: b.Kind, CreatedAt: b.CreatedAt}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createBranchRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBranchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	b, err := h.service.Create(r.Context(), CreateBranchInput{Name: req.Name, Kind: Kind(req.Kind)})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, branchResponse{ID: b.ID, Name: b.Name, Kind: b.Kind, CreatedAt: b.CreatedAt})
}
