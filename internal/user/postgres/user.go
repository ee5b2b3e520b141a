package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	if err := r.db.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return internal.ErrUsernameTaken
		}
		return internal.NewConnectivityError("record store unreachable", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmployeeID(employeeID string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("employee_id = ?", employeeID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return &u, nil
}

func (r *UserRepository) GetAll() ([]user.User, error) {
	var users []user.User
	if err := r.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return users, nil
}

func (r *UserRepository) Update(u *user.User) error {
	// Save writes every column, so clearing a flag like is_active sticks.
	result := r.db.Save(u)
	if result.Error != nil {
		return internal.NewConnectivityError("record store unreachable", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&user.User{})
	if result.Error != nil {
		return internal.NewConnectivityError("record store unreachable", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
