package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ekid-reports/ekid/internal/platform/httpx"
	"github.com/ekid-reports/ekid/internal/shared"
)

// Handler manages report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the branch-user report routes under /reports.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/mine", h.mine)
	r.Post("/{id}/submit", h.submit)
	r.Post("/{id}/activities/{activityID}", h.submitActivity)
	r.Get("/{id}/entries", h.listEntries)
}

// MountPlanRoutes registers the admin per-plan report routes. The caller
// wraps these in the admin guard.
func (h *Handler) MountPlanRoutes(r chi.Router) {
	r.Get("/{id}/reports", h.listByPlan)
	r.Get("/{id}/reports/export", h.export)
}

type reportResponse struct {
	ID          int64      `json:"id"`
	PlanID      int64      `json:"plan_id"`
	UserID      int64      `json:"user_id"`
	UserName    string     `json:"user_name,omitempty"`
	BranchName  string     `json:"branch_name,omitempty"`
	Achieved    float64    `json:"achieved"`
	Target      float64    `json:"target"`
	Percentage  float64    `json:"percentage"`
	Notes       string     `json:"notes,omitempty"`
	Status      Status     `json:"status"`
	Deadline    time.Time  `json:"deadline"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func toReportResponse(r Report) reportResponse {
	return reportResponse{
		ID:          r.ID,
		PlanID:      r.PlanID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		BranchName:  r.BranchName,
		Achieved:    r.Achieved,
		Target:      r.PlanTarget,
		Percentage:  r.Percentage,
		Notes:       r.Notes,
		Status:      r.Status,
		Deadline:    r.PlanDeadline,
		SubmittedAt: r.SubmittedAt,
	}
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	list, err := h.service.History(r.Context(), sess.UserID())
	if err != nil {
		h.logger.Error("list own reports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]reportResponse, len(list))
	for i, rep := range list {
		out[i] = toReportResponse(rep)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type submitRequest struct {
	Achieved float64 `json:"achieved"`
	Notes    string  `json:"notes"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	rep, err := h.service.Submit(r.Context(), sess.UserID(), id, SubmitInput{
		Achieved: req.Achieved,
		Notes:    req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReportResponse(*rep))
}

type submitActivityRequest struct {
	Achieved float64 `json:"achieved"`
}

type entryResponse struct {
	ID         int64   `json:"id"`
	ReportID   int64   `json:"report_id"`
	ActivityID int64   `json:"activity_id"`
	Achieved   float64 `json:"achieved"`
	Percentage float64 `json:"percentage"`
}

func (h *Handler) submitActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	activityID, err := pathID(r, "activityID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid activity id")
		return
	}
	var req submitActivityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	entry, err := h.service.SubmitActivity(r.Context(), sess.UserID(), id, activityID, req.Achieved)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entryResponse{
		ID:         entry.ID,
		ReportID:   entry.ReportID,
		ActivityID: entry.ActivityID,
		Achieved:   entry.Achieved,
		Percentage: entry.Percentage,
	})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	list, err := h.service.Entries(r.Context(), sess.UserID(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, len(list))
	for i, e := range list {
		out[i] = entryResponse{
			ID:         e.ID,
			ReportID:   e.ReportID,
			ActivityID: e.ActivityID,
			Achieved:   e.Achieved,
			Percentage: e.Percentage,
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listByPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid plan id")
		return
	}
	list, err := h.service.ListByPlan(r.Context(), planID)
	if err != nil {
		h.logger.Error("list plan reports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]reportResponse, len(list))
	for i, rep := range list {
		out[i] = toReportResponse(rep)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid plan id")
		return
	}
	list, err := h.service.ListByPlan(r.Context(), planID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	book, err := BuildWorkbook(list)
	if err != nil {
		h.logger.Error("build report workbook", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "export failed")
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="reports_plan_`+strconv.FormatInt(planID, 10)+`.xlsx"`)
	if err := book.Write(w); err != nil {
		h.logger.Error("stream report workbook", slog.Any("error", err))
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
