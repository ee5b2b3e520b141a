package plan

import (
	"time"

	internal "github.com/thanhhle/salesops-management/internal"
)

// Plan statuses. A plan enters the system pending, a manager approves or
// rejects it, the owner reports results to complete it, and a completed
// plan can be rated.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// RatingRated marks a completed plan that holds a manager evaluation.
const RatingRated = "rated"

// ProductFigures holds per-product counts. The same shape serves both
// weekly targets and reported results. RevenueCNTT is in VND.
type ProductFigures struct {
	Sim           int   `gorm:"column:sim" json:"sim"`
	Vas           int   `gorm:"column:vas" json:"vas"`
	Fiber         int   `gorm:"column:fiber" json:"fiber"`
	MyTV          int   `gorm:"column:mytv" json:"mytv"`
	MeshCamera    int   `gorm:"column:mesh_camera" json:"mesh_camera"`
	CNTT          int   `gorm:"column:cntt" json:"cntt"`
	RevenueCNTT   int64 `gorm:"column:revenue_cntt" json:"revenue_cntt"`
	OtherServices int   `gorm:"column:other_services" json:"other_services"`
}

// Plan is one sales employee's weekly work plan for a single day.
type Plan struct {
	ID           string `gorm:"primaryKey" json:"id"`
	EmployeeID   string `gorm:"column:employee_id;index" json:"employee_id"`
	EmployeeName string `gorm:"column:employee_name" json:"employee_name"`

	// Owner snapshot taken at submission time, for listings and exports.
	Position       string `gorm:"column:position" json:"position"`
	ManagementArea string `gorm:"column:management_area" json:"management_area"`

	WeekNumber string `gorm:"column:week_number" json:"week_number"`
	Date       string `gorm:"column:date" json:"date"`
	Area       string `gorm:"column:area" json:"area"`

	WorkContent   string `gorm:"column:work_content" json:"work_content"`
	Collaborators string `gorm:"column:collaborators" json:"collaborators"`

	Targets ProductFigures `gorm:"embedded;embeddedPrefix:target_" json:"targets"`
	Results ProductFigures `gorm:"embedded;embeddedPrefix:result_" json:"results"`

	TimeSchedule         string `gorm:"column:time_schedule" json:"time_schedule"`
	ImplementationMethod string `gorm:"column:implementation_method" json:"implementation_method"`

	CustomersContacted int    `gorm:"column:customers_contacted" json:"customers_contacted"`
	ContractsSigned    int    `gorm:"column:contracts_signed" json:"contracts_signed"`
	Challenges         string `gorm:"column:challenges" json:"challenges"`
	Notes              string `gorm:"column:notes" json:"notes"`

	Status string `gorm:"column:status;index" json:"status"`

	Rating             string `gorm:"column:rating" json:"rating,omitempty"`
	AttitudeScore      string `gorm:"column:attitude_score" json:"attitude_score,omitempty"`
	DisciplineScore    string `gorm:"column:discipline_score" json:"discipline_score,omitempty"`
	EffectivenessScore string `gorm:"column:effectiveness_score" json:"effectiveness_score,omitempty"`
	BonusScore         int    `gorm:"column:bonus_score" json:"bonus_score"`
	PenaltyScore       int    `gorm:"column:penalty_score" json:"penalty_score"`
	ManagerComment     string `gorm:"column:manager_comment" json:"manager_comment,omitempty"`
	EvidencePhoto      string `gorm:"column:evidence_photo" json:"evidence_photo,omitempty"`
	RatedBy            string `gorm:"column:rated_by" json:"rated_by,omitempty"`

	ApprovedBy     string `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ReturnedReason string `gorm:"column:returned_reason" json:"returned_reason,omitempty"`

	ApprovedAt  *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RatedAt     *time.Time `gorm:"column:rated_at" json:"rated_at,omitempty"`
	SubmittedAt time.Time  `gorm:"column:submitted_at" json:"submitted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }

func (p *Plan) CanBeApproved() bool  { return p.Status == StatusPending }
func (p *Plan) CanBeRejected() bool  { return p.Status == StatusPending }
func (p *Plan) CanBeCompleted() bool { return p.Status == StatusApproved }
func (p *Plan) CanBeRated() bool     { return p.Status == StatusCompleted }

// Approve moves a pending plan to approved and stamps the approver.
func (p *Plan) Approve(approverName string) error {
	if !p.CanBeApproved() {
		return internal.ErrInvalidPlanStatus
	}
	now := time.Now()
	p.Status = StatusApproved
	p.ApprovedBy = approverName
	p.ApprovedAt = &now
	p.ReturnedReason = ""
	p.UpdatedAt = now
	return nil
}

// Reject moves a pending plan to rejected. The reason is mandatory and
// must not be whitespace-only; a refused rejection leaves the plan
// pending and untouched.
func (p *Plan) Reject(approverName, reason string) error {
	if !p.CanBeRejected() {
		return internal.ErrInvalidPlanStatus
	}
	now := time.Now()
	p.Status = StatusRejected
	p.ApprovedBy = approverName
	p.ApprovedAt = &now
	p.ReturnedReason = reason
	p.UpdatedAt = now
	return nil
}

// ReportResults records the day's figures on an approved plan and moves
// it to completed.
func (p *Plan) ReportResults(dto ResultsDTO) error {
	if !p.CanBeCompleted() {
		return internal.ErrInvalidPlanStatus
	}
	p.Results = dto.Results
	p.CustomersContacted = dto.CustomersContacted
	p.ContractsSigned = dto.ContractsSigned
	p.Challenges = dto.Challenges
	p.Notes = dto.Notes
	p.Status = StatusCompleted
	p.UpdatedAt = time.Now()
	return nil
}

// ApplyRating stores the manager's evaluation on a completed plan.
// Re-rating overwrites the previous evaluation in place.
func (p *Plan) ApplyRating(raterName string, dto RatingDTO) error {
	if !p.CanBeRated() {
		return internal.ErrInvalidPlanStatus
	}
	now := time.Now()
	p.Rating = RatingRated
	p.AttitudeScore = dto.AttitudeScore
	p.DisciplineScore = dto.DisciplineScore
	p.EffectivenessScore = dto.EffectivenessScore
	p.BonusScore = dto.BonusScore
	p.PenaltyScore = dto.PenaltyScore
	p.ManagerComment = dto.ManagerComment
	p.EvidencePhoto = dto.EvidencePhoto
	p.RatedBy = raterName
	p.RatedAt = &now
	p.UpdatedAt = now
	return nil
}
