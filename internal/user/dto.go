package user

import (
	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/auth"
	"github.com/thanhhle/salesops-management/internal/core/common/validation"
)

// maxAvatarBytes bounds the inline base64 avatar payload.
const maxAvatarBytes = 2 * 1024 * 1024

type CreateUserDTO struct {
	EmployeeName   string `json:"employee_name"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Position       string `json:"position"`
	ManagementArea string `json:"management_area"`
	Avatar         string `json:"avatar,omitempty"`
}

func (d CreateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("employee_name", d.EmployeeName).Required().MaxLength(200)
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(100)
	v.Field("position", d.Position).Required().MaxLength(200)
	if err := v.Validate(); err != nil {
		return err
	}
	if len(d.Password) < 6 {
		return internal.ErrPasswordTooShort
	}
	if !auth.ValidRole(d.Role) {
		return internal.NewValidationError("role must be admin, manager or employee", internal.ErrCodeInvalidRole)
	}
	if len(d.Avatar) > maxAvatarBytes {
		return internal.NewValidationError("avatar must not exceed 2MB", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateUserDTO carries partial profile updates. Nil fields are left
// untouched.
type UpdateUserDTO struct {
	EmployeeName   *string `json:"employee_name,omitempty"`
	Position       *string `json:"position,omitempty"`
	ManagementArea *string `json:"management_area,omitempty"`
	Avatar         *string `json:"avatar,omitempty"`
	Role           *string `json:"role,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (d UpdateUserDTO) Validate() *internal.AppError {
	if d.Role != nil && !auth.ValidRole(*d.Role) {
		return internal.NewValidationError("role must be admin, manager or employee", internal.ErrCodeInvalidRole)
	}
	if d.Avatar != nil && len(*d.Avatar) > maxAvatarBytes {
		return internal.NewValidationError("avatar must not exceed 2MB", internal.ErrCodeValidationFailed)
	}
	if d.EmployeeName != nil {
		v := validation.NewValidator()
		v.Field("employee_name", *d.EmployeeName).Required().MaxLength(200)
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
