package user

import (
	"time"
)

// User is an account in the branch: an administrator, a sales manager,
// or a sales employee. EmployeeID is the business identifier plans are
// keyed by; ID is the storage key.
type User struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	EmployeeID     string    `gorm:"column:employee_id;uniqueIndex" json:"employee_id"`
	EmployeeName   string    `gorm:"column:employee_name" json:"employee_name"`
	Avatar         string    `gorm:"column:avatar" json:"avatar,omitempty"`
	Position       string    `gorm:"column:position" json:"position"`
	ManagementArea string    `gorm:"column:management_area" json:"management_area"`
	Username       string    `gorm:"column:username;uniqueIndex" json:"username"`
	PasswordHash   string    `gorm:"column:password_hash" json:"-"`
	Role           string    `gorm:"column:role" json:"role"`
	IsActive       bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Repository is the user storage contract.
type Repository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmployeeID(employeeID string) (*User, error)
	GetAll() ([]User, error)
	Update(user *User) error
	Delete(id string) error
}
