package plan

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/core/events"
)

// Repository is the plan storage contract.
type Repository interface {
	Create(p *Plan) error
	GetByID(id string) (*Plan, error)
	GetAll(filter ListFilter) ([]Plan, error)
	GetByEmployeeID(employeeID string) ([]Plan, error)
	ExistsForEmployeeDate(employeeID, date string) (bool, error)
	Update(p *Plan) error
	DeleteByEmployeeID(employeeID string) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// OwnerProfile is the slice of the employee directory a plan snapshots
// at submission time.
type OwnerProfile struct {
	Position       string
	ManagementArea string
}

type OwnerDirectory interface {
	OwnerProfile(employeeID string) (OwnerProfile, error)
}

type Service struct {
	repo     Repository
	owners   OwnerDirectory
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, owners OwnerDirectory, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		owners:   owners,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Submit creates a pending plan for the actor. An employee may hold at
// most one plan per calendar day; a duplicate submission is refused
// without touching the existing record.
func (s *Service) Submit(actor *auth.Claims, dto CreatePlanDTO) (*Plan, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if !auth.CanPerform(actor.Role, actor.EmployeeID, actor.EmployeeID, auth.ActionSubmitPlan) {
		return nil, internal.ErrForbiddenAction
	}

	exists, err := s.repo.ExistsForEmployeeDate(actor.EmployeeID, dto.Date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, internal.ErrDuplicatePlanDate
	}

	// The owner snapshot is display data; a directory miss must not
	// block the submission.
	var profile OwnerProfile
	if s.owners != nil {
		profile, err = s.owners.OwnerProfile(actor.EmployeeID)
		if err != nil {
			s.logger.Warn("owner profile lookup failed", "employee_id", actor.EmployeeID, "error", err)
			profile = OwnerProfile{}
		}
	}

	now := time.Now()
	p := &Plan{
		ID:                   uuid.New().String(),
		EmployeeID:           actor.EmployeeID,
		EmployeeName:         actor.EmployeeName,
		Position:             profile.Position,
		ManagementArea:       profile.ManagementArea,
		WeekNumber:           dto.WeekNumber,
		Date:                 dto.Date,
		Area:                 dto.Area,
		WorkContent:          dto.WorkContent,
		Collaborators:        dto.Collaborators,
		Targets:              dto.Targets,
		TimeSchedule:         dto.TimeSchedule,
		ImplementationMethod: dto.ImplementationMethod,
		Status:               StatusPending,
		SubmittedAt:          now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	s.publish(events.NewPlanSubmitted(p.ID, p.EmployeeID, p.Date))
	return p, nil
}

// Approve moves a pending plan to approved. Managers may not approve
// their own plans.
func (s *Service) Approve(actor *auth.Claims, planID string) (*Plan, error) {
	p, err := s.repo.GetByID(planID)
	if err != nil {
		return nil, err
	}

	if !auth.CanPerform(actor.Role, actor.EmployeeID, p.EmployeeID, auth.ActionApprovePlan) {
		if actor.EmployeeID == p.EmployeeID {
			return nil, internal.ErrSelfActionDenied
		}
		return nil, internal.ErrForbiddenAction
	}

	if err := p.Approve(actor.EmployeeName); err != nil {
		return nil, err
	}

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	s.publish(events.NewPlanApproved(p.ID, p.EmployeeID, actor.EmployeeName))
	return p, nil
}

// Reject moves a pending plan to rejected. The reason is validated
// before any state changes, so a refused rejection leaves the plan
// pending.
func (s *Service) Reject(actor *auth.Claims, planID string, dto RejectPlanDTO) (*Plan, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(planID)
	if err != nil {
		return nil, err
	}

	if !auth.CanPerform(actor.Role, actor.EmployeeID, p.EmployeeID, auth.ActionRejectPlan) {
		if actor.EmployeeID == p.EmployeeID {
			return nil, internal.ErrSelfActionDenied
		}
		return nil, internal.ErrForbiddenAction
	}

	if err := p.Reject(actor.EmployeeName, strings.TrimSpace(dto.Reason)); err != nil {
		return nil, err
	}

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	s.publish(events.NewPlanRejected(p.ID, p.EmployeeID, actor.EmployeeName, p.ReturnedReason))
	return p, nil
}

// ReportResults records the owner's daily figures on an approved plan
// and completes it.
func (s *Service) ReportResults(actor *auth.Claims, planID string, dto ResultsDTO) (*Plan, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(planID)
	if err != nil {
		return nil, err
	}

	if !auth.CanPerform(actor.Role, actor.EmployeeID, p.EmployeeID, auth.ActionReportResults) {
		return nil, internal.ErrForbiddenAction
	}

	if err := p.ReportResults(dto); err != nil {
		return nil, err
	}

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	s.publish(events.NewPlanCompleted(p.ID, p.EmployeeID))
	return p, nil
}

// Rate stores the manager's evaluation on a completed plan. Re-rating
// overwrites the previous evaluation.
func (s *Service) Rate(actor *auth.Claims, planID string, dto RatingDTO) (*Plan, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(planID)
	if err != nil {
		return nil, err
	}

	if !auth.CanPerform(actor.Role, actor.EmployeeID, p.EmployeeID, auth.ActionRatePlan) {
		if actor.EmployeeID == p.EmployeeID {
			return nil, internal.ErrSelfActionDenied
		}
		return nil, internal.ErrForbiddenAction
	}

	if err := p.ApplyRating(actor.EmployeeName, dto); err != nil {
		return nil, err
	}

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	s.publish(events.NewPlanRated(p.ID, p.EmployeeID, p.RatedBy))
	return p, nil
}

func (s *Service) GetByID(actor *auth.Claims, planID string) (*Plan, error) {
	p, err := s.repo.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if !auth.CanPerform(actor.Role, actor.EmployeeID, p.EmployeeID, auth.ActionViewPlan) {
		return nil, internal.ErrForbiddenAction
	}
	return p, nil
}

// List returns plans visible to the actor. Employees only ever see their
// own plans regardless of the requested filter.
func (s *Service) List(actor *auth.Claims, filter ListFilter) ([]Plan, error) {
	if actor.Role == auth.RoleEmployee {
		filter.EmployeeID = actor.EmployeeID
	}
	return s.repo.GetAll(filter)
}

// ListPending returns the manager approval queue.
func (s *Service) ListPending(actor *auth.Claims) ([]Plan, error) {
	if actor.Role == auth.RoleEmployee {
		return nil, internal.ErrForbiddenAction
	}
	return s.repo.GetAll(ListFilter{Status: StatusPending})
}

// ListCompleted returns completed plans awaiting or holding a rating.
func (s *Service) ListCompleted(actor *auth.Claims) ([]Plan, error) {
	if actor.Role == auth.RoleEmployee {
		return s.repo.GetAll(ListFilter{Status: StatusCompleted, EmployeeID: actor.EmployeeID})
	}
	return s.repo.GetAll(ListFilter{Status: StatusCompleted})
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Warn("event publish failed", "event_type", event.EventType(), "error", err)
	}
}
