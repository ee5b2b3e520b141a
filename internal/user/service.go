package user

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/auth"
)

// PlanDeleter is the slice of plan storage the cascade delete needs.
type PlanDeleter interface {
	DeleteByEmployeeID(employeeID string) (int64, error)
}

type Service struct {
	repo       Repository
	plans      PlanDeleter
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, plans PlanDeleter, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		plans:      plans,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create registers a new account. The actor must be allowed to manage
// accounts of the requested role.
func (s *Service) Create(actor *auth.Claims, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if !auth.CanPerform(actor.Role, actor.UserID, "", auth.ActionCreateUser) ||
		!auth.ManageableRole(actor.Role, dto.Role) {
		return nil, internal.ErrForbiddenAction
	}

	if existing, err := s.repo.GetByUsername(dto.Username); err == nil && existing != nil {
		return nil, internal.ErrUsernameTaken
	} else if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConnectivity {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	u := &User{
		ID:             uuid.New().String(),
		EmployeeID:     fmt.Sprintf("EMP_%d", now.UnixMilli()),
		EmployeeName:   dto.EmployeeName,
		Avatar:         dto.Avatar,
		Position:       dto.Position,
		ManagementArea: dto.ManagementArea,
		Username:       dto.Username,
		PasswordHash:   hash,
		Role:           dto.Role,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "employee_id", u.EmployeeID, "role", u.Role)
	return u, nil
}

// Update applies a partial profile update. Deactivation counts as a
// destructive action and may never target the actor's own account.
func (s *Service) Update(actor *auth.Claims, userID string, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	action := auth.ActionUpdateUser
	if dto.IsActive != nil && !*dto.IsActive {
		action = auth.ActionDeactivateUser
	}
	if !auth.CanPerform(actor.Role, actor.UserID, target.ID, action) {
		if actor.UserID == target.ID && action == auth.ActionDeactivateUser {
			return nil, internal.ErrSelfActionDenied
		}
		return nil, internal.ErrForbiddenAction
	}
	if !auth.ManageableRole(actor.Role, target.Role) && actor.UserID != target.ID {
		return nil, internal.ErrForbiddenAction
	}

	if dto.Role != nil && *dto.Role != target.Role {
		// Only admins may change their own role.
		if actor.UserID == target.ID && actor.Role != auth.RoleAdmin {
			return nil, internal.ErrForbiddenAction
		}
		if !auth.ManageableRole(actor.Role, *dto.Role) {
			return nil, internal.ErrForbiddenAction
		}
		target.Role = *dto.Role
	}
	if dto.EmployeeName != nil {
		target.EmployeeName = *dto.EmployeeName
	}
	if dto.Position != nil {
		target.Position = *dto.Position
	}
	if dto.ManagementArea != nil {
		target.ManagementArea = *dto.ManagementArea
	}
	if dto.Avatar != nil {
		target.Avatar = *dto.Avatar
	}
	if dto.IsActive != nil {
		target.IsActive = *dto.IsActive
	}
	target.UpdatedAt = time.Now()

	if err := s.repo.Update(target); err != nil {
		return nil, err
	}

	return target, nil
}

// Delete removes an account and every plan keyed by its employee id.
// The plan sweep runs first so a failure leaves the account intact and
// the operation retryable.
func (s *Service) Delete(actor *auth.Claims, userID string) error {
	target, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}

	if !auth.CanPerform(actor.Role, actor.UserID, target.ID, auth.ActionDeleteUser) {
		if actor.UserID == target.ID {
			return internal.ErrSelfActionDenied
		}
		return internal.ErrForbiddenAction
	}
	if !auth.ManageableRole(actor.Role, target.Role) {
		return internal.ErrForbiddenAction
	}

	deleted, err := s.plans.DeleteByEmployeeID(target.EmployeeID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(target.ID); err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", target.ID, "employee_id", target.EmployeeID, "plans_removed", deleted)
	return nil
}

// GetByID returns one account. Everyone may read their own profile;
// reading anyone else's takes the directory privilege.
func (s *Service) GetByID(actor *auth.Claims, userID string) (*User, error) {
	if actor.UserID != userID && !auth.CanPerform(actor.Role, actor.UserID, userID, auth.ActionViewUsers) {
		return nil, internal.ErrForbiddenAction
	}
	return s.repo.GetByID(userID)
}

// List returns all accounts, for the team directory and the manager views.
func (s *Service) List(actor *auth.Claims) ([]User, error) {
	if !auth.CanPerform(actor.Role, actor.UserID, "", auth.ActionViewUsers) {
		return nil, internal.ErrForbiddenAction
	}
	return s.repo.GetAll()
}
