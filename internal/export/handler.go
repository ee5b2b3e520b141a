package export

import (
	"fmt"
	"log/slog"
	"net/http"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/plan"
	"github.com/thanhhle/salesops-management/internal/transport"
	"github.com/thanhhle/salesops-management/pkg/logger"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 10 * 1024 * 1024
)

// PlanAPI is the slice of the plan service export needs.
type PlanAPI interface {
	List(actor *auth.Claims, filter plan.ListFilter) ([]plan.Plan, error)
	Submit(actor *auth.Claims, dto plan.CreatePlanDTO) (*plan.Plan, error)
}

type Handler struct {
	*transport.BaseHandler
	Plans PlanAPI
}

func NewHandler(plans PlanAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Plans:       plans,
	}
}

// ExportPlans streams the filtered plan list as a spreadsheet.
func (h *Handler) ExportPlans(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	q := r.URL.Query()
	filter := plan.ListFilter{
		EmployeeID: q.Get("employee_id"),
		Status:     q.Get("status"),
		WeekNumber: q.Get("week"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
	}

	plans, err := h.Plans.List(claims, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	workbook, err := BuildWorkbook(plans, claims.EmployeeName)
	if err != nil {
		h.Logger.Error("workbook build failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build spreadsheet")
		return
	}
	defer workbook.Close()

	fileName := FileName(q.Get("date"), q.Get("week"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := workbook.Write(w); err != nil {
		h.Logger.Error("workbook write failed", "error", err)
	}
}

// DownloadTemplate streams the blank import template.
func (h *Handler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	workbook, err := BuildTemplate()
	if err != nil {
		h.Logger.Error("template build failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build template")
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="mau-ke-hoach.xlsx"`)
	if err := workbook.Write(w); err != nil {
		h.Logger.Error("template write failed", "error", err)
	}
}

// ImportPlans accepts a filled template and submits one plan per row on
// behalf of the caller. Rows that fail validation or collide with an
// existing plan date are skipped and reported, not fatal.
func (h *Handler) ImportPlans(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	dtos, rowErrors, err := ParsePlans(file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	summary := ImportSummary{Errors: rowErrors, Skipped: len(rowErrors)}
	for _, dto := range dtos {
		if _, submitErr := h.Plans.Submit(claims, dto); submitErr != nil {
			summary.Skipped++
			if appErr, ok := internal.IsAppError(submitErr); ok {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("date %s: %s", dto.Date, appErr.GetDetailedMessage()))
			} else {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("date %s: import failed", dto.Date))
			}
			continue
		}
		summary.Imported++
	}

	h.Logger.Info("plan import finished",
		"employee_id", claims.EmployeeID,
		"imported", summary.Imported,
		"skipped", summary.Skipped)

	h.WriteJSON(w, http.StatusOK, summary)
}
