package plan

import (
	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/core/common/validation"
)

type CreatePlanDTO struct {
	WeekNumber           string         `json:"week_number"`
	Date                 string         `json:"date"`
	Area                 string         `json:"area"`
	WorkContent          string         `json:"work_content"`
	Collaborators        string         `json:"collaborators"`
	Targets              ProductFigures `json:"targets"`
	TimeSchedule         string         `json:"time_schedule"`
	ImplementationMethod string         `json:"implementation_method"`
}

func (d CreatePlanDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("week_number", d.WeekNumber).Required().MaxLength(50)
	v.Field("date", d.Date).Required().DateFormat("2006-01-02")
	v.Field("area", d.Area).Required().MaxLength(200)
	v.Field("work_content", d.WorkContent).Required().MaxLength(2000)
	return v.Validate()
}

// ResultsDTO carries the day's reported figures.
type ResultsDTO struct {
	Results            ProductFigures `json:"results"`
	CustomersContacted int            `json:"customers_contacted"`
	ContractsSigned    int            `json:"contracts_signed"`
	Challenges         string         `json:"challenges"`
	Notes              string         `json:"notes"`
}

func (d ResultsDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("customers_contacted", int64(d.CustomersContacted)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("contracts_signed", int64(d.ContractsSigned)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("challenges", d.Challenges).MaxLength(2000)
	v.Field("notes", d.Notes).MaxLength(2000)
	return v.Validate()
}

// maxEvidenceBytes bounds the inline base64 evidence photo.
const maxEvidenceBytes = 5 * 1024 * 1024

// Score labels the branch uses on evaluation forms, best to worst.
var scoreLabels = []string{"Xuất sắc", "Tốt", "Khá", "Trung bình", "Yếu"}

func validScoreLabel(label string) bool {
	for _, l := range scoreLabels {
		if l == label {
			return true
		}
	}
	return false
}

type RatingDTO struct {
	AttitudeScore      string `json:"attitude_score"`
	DisciplineScore    string `json:"discipline_score"`
	EffectivenessScore string `json:"effectiveness_score"`
	BonusScore         int    `json:"bonus_score"`
	PenaltyScore       int    `json:"penalty_score"`
	ManagerComment     string `json:"manager_comment"`
	EvidencePhoto      string `json:"evidence_photo,omitempty"`
}

func (d RatingDTO) Validate() *internal.AppError {
	for field, label := range map[string]string{
		"attitude_score":      d.AttitudeScore,
		"discipline_score":    d.DisciplineScore,
		"effectiveness_score": d.EffectivenessScore,
	} {
		if !validScoreLabel(label) {
			return internal.NewValidationError(field+" must be one of the evaluation labels", internal.ErrCodeValidationFailed)
		}
	}

	v := validation.NewValidator()
	v.Field("bonus_score", int64(d.BonusScore)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("penalty_score", int64(d.PenaltyScore)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("manager_comment", d.ManagerComment).MaxLength(2000)
	if err := v.Validate(); err != nil {
		return err
	}
	if len(d.EvidencePhoto) > maxEvidenceBytes {
		return internal.NewValidationError("evidence photo must not exceed 5MB", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RejectPlanDTO struct {
	Reason string `json:"reason"`
}

func (d RejectPlanDTO) Validate() *internal.AppError {
	return validation.ValidateRejectionReason(d.Reason)
}

// ListFilter narrows plan listings. Zero values mean no constraint.
type ListFilter struct {
	EmployeeID string
	Status     string
	WeekNumber string
	DateFrom   string
	DateTo     string
}
