package report

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/plan"
	"github.com/thanhhle/salesops-management/internal/transport"
	"github.com/thanhhle/salesops-management/pkg/logger"
)

// PlanLister supplies the plans a report is computed over. Visibility
// rules live in the plan service, so reports inherit them for free.
type PlanLister interface {
	List(actor *auth.Claims, filter plan.ListFilter) ([]plan.Plan, error)
}

const defaultMaxWeeks = 6

type Handler struct {
	*transport.BaseHandler
	Plans PlanLister
}

func NewHandler(plans PlanLister) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Plans:       plans,
	}
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) ([]plan.Plan, *auth.Claims, bool) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return nil, nil, false
	}

	q := r.URL.Query()
	filter := plan.ListFilter{
		EmployeeID: q.Get("employee_id"),
		WeekNumber: q.Get("week"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
	}

	plans, err := h.Plans.List(claims, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, nil, false
	}
	return plans, claims, true
}

func (h *Handler) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	plans, _, ok := h.listPlans(w, r)
	if !ok {
		return
	}

	maxWeeks := defaultMaxWeeks
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxWeeks = n
		}
	}

	h.WriteJSON(w, http.StatusOK, WeeklySummary(plans, maxWeeks))
}

func (h *Handler) GetStatusDistribution(w http.ResponseWriter, r *http.Request) {
	plans, _, ok := h.listPlans(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, StatusDistribution(plans))
}

func (h *Handler) GetEmployeeRanking(w http.ResponseWriter, r *http.Request) {
	plans, claims, ok := h.listPlans(w, r)
	if !ok {
		return
	}

	// Rankings compare employees against each other, so the team-wide
	// view is for managers and admins only.
	if claims.Role == auth.RoleEmployee {
		h.WriteError(w, http.StatusForbidden, "insufficient role")
		return
	}

	topN := 3
	if raw := r.URL.Query().Get("top"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			topN = n
		}
	}

	h.WriteJSON(w, http.StatusOK, EmployeeRanking(plans, topN))
}

func (h *Handler) GetProductTrend(w http.ResponseWriter, r *http.Request) {
	plans, _, ok := h.listPlans(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	product := q.Get("product")
	if product == "" {
		product = "sim"
	}
	granularity := q.Get("granularity")
	if granularity == "" {
		granularity = TrendByDay
	}

	points, err := ProductTrend(plans, product, granularity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, points)
}
