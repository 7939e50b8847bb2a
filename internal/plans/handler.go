package plans

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ekid-reports/ekid/internal/auth"
	"github.com/ekid-reports/ekid/internal/period"
	"github.com/ekid-reports/ekid/internal/platform/httpx"
	"github.com/ekid-reports/ekid/internal/users"
)

// Handler manages plan endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers plan routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/current", h.current)
	r.Get("/current/activities", h.listActivities)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(string(users.RoleAdmin)))
		r.Get("/", h.listArchived)
		r.Patch("/current/target", h.updateTarget)
		r.Post("/current/activities", h.addActivity)
	})
}

type planResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FiscalMonth int       `json:"fiscal_month"`
	FiscalYear  int       `json:"fiscal_year"`
	MonthName   string    `json:"month_name"`
	Target      float64   `json:"target"`
	Deadline    time.Time `json:"deadline"`
	Status      Status    `json:"status"`
}

func toPlanResponse(p Plan) planResponse {
	return planResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		FiscalMonth: p.FiscalMonth,
		FiscalYear:  p.FiscalYear,
		MonthName:   period.Period{Month: p.FiscalMonth, Year: p.FiscalYear}.Name(),
		Target:      p.Target,
		Deadline:    p.Deadline,
		Status:      p.Status,
	}
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetCurrent(r.Context())
	if err != nil {
		h.logger.Error("get current plan", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPlanResponse(*plan))
}

func (h *Handler) listArchived(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListArchived(r.Context())
	if err != nil {
		h.logger.Error("list archived plans", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]planResponse, len(list))
	for i, p := range list {
		out[i] = toPlanResponse(p)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type updateTargetRequest struct {
	Target float64 `json:"target"`
}

func (h *Handler) updateTarget(w http.ResponseWriter, r *http.Request) {
	var req updateTargetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	plan, err := h.service.UpdateTarget(r.Context(), req.Target)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPlanResponse(*plan))
}

type activityResponse struct {
	ID     int64   `json:"id"`
	PlanID int64   `json:"plan_id"`
	Title  string  `json:"title"`
	Target float64 `json:"target"`
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCurrentActivities(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]activityResponse, len(list))
	for i, a := range list {
		out[i] = activityResponse{ID: a.ID, PlanID: a.PlanID, Title: a.Title, Target: a.Target}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createActivityRequest struct {
	Title  string  `json:"title"`
	Target float64 `json:"target"`
}

func (h *Handler) addActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	a, err := h.service.AddActivity(r.Context(), CreateActivityInput{Title: req.Title, Target: req.Target})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, activityResponse{ID: a.ID, PlanID: a.PlanID, Title: a.Title, Target: a.Target})
}
