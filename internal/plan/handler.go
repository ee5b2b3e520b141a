package plan

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/transport"
	"github.com/thanhhle/salesops-management/pkg/logger"
)

type ServiceAPI interface {
	Submit(actor *auth.Claims, dto CreatePlanDTO) (*Plan, error)
	Approve(actor *auth.Claims, planID string) (*Plan, error)
	Reject(actor *auth.Claims, planID string, dto RejectPlanDTO) (*Plan, error)
	ReportResults(actor *auth.Claims, planID string, dto ResultsDTO) (*Plan, error)
	Rate(actor *auth.Claims, planID string, dto RatingDTO) (*Plan, error)
	GetByID(actor *auth.Claims, planID string) (*Plan, error)
	List(actor *auth.Claims, filter ListFilter) ([]Plan, error)
	ListPending(actor *auth.Claims) ([]Plan, error)
	ListCompleted(actor *auth.Claims) ([]Plan, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) SubmitPlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	var dto CreatePlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Submit(claims, dto)
	if err != nil {
		h.Logger.Error("submit plan failed", "employee_id", claims.EmployeeID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ApprovePlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	planID := chi.URLParam(r, "id")

	updated, err := h.Service.Approve(claims, planID)
	if err != nil {
		h.Logger.Error("approve plan failed", "plan_id", planID, "actor", claims.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) RejectPlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	planID := chi.URLParam(r, "id")

	var dto RejectPlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Reject(claims, planID, dto)
	if err != nil {
		h.Logger.Error("reject plan failed", "plan_id", planID, "actor", claims.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) ReportResults(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	planID := chi.URLParam(r, "id")

	var dto ResultsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.ReportResults(claims, planID, dto)
	if err != nil {
		h.Logger.Error("report results failed", "plan_id", planID, "actor", claims.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) RatePlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	planID := chi.URLParam(r, "id")

	var dto RatingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Rate(claims, planID, dto)
	if err != nil {
		h.Logger.Error("rate plan failed", "plan_id", planID, "actor", claims.UserID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	planID := chi.URLParam(r, "id")

	p, err := h.Service.GetByID(claims, planID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	filter := filterFromQuery(r)

	plans, err := h.Service.List(claims, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, plans)
}

func (h *Handler) ListPendingPlans(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	plans, err := h.Service.ListPending(claims)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, plans)
}

func (h *Handler) ListCompletedPlans(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	plans, err := h.Service.ListCompleted(claims)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, plans)
}

func filterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	return ListFilter{
		EmployeeID: q.Get("employee_id"),
		Status:     q.Get("status"),
		WeekNumber: q.Get("week"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
	}
}
