package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/auth"
)

// accountModel maps the credential slice of the users table.
type accountModel struct {
	ID           string `gorm:"primaryKey"`
	EmployeeID   string
	EmployeeName string
	Username     string
	PasswordHash string
	Role         string
	IsActive     bool
	UpdatedAt    time.Time
}

func (accountModel) TableName() string { return "users" }

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetAccountByUsername(username string) (*auth.Account, error) {
	var m accountModel
	err := r.db.Where("username = ?", username).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return toAccount(&m), nil
}

func (r *AuthRepository) GetAccountByID(userID string) (*auth.Account, error) {
	var m accountModel
	err := r.db.Where("id = ?", userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return toAccount(&m), nil
}

func (r *AuthRepository) UpdatePasswordHash(userID, passwordHash string) error {
	result := r.db.Model(&accountModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return internal.NewConnectivityError("record store unreachable", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func toAccount(m *accountModel) *auth.Account {
	return &auth.Account{
		ID:           m.ID,
		EmployeeID:   m.EmployeeID,
		EmployeeName: m.EmployeeName,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		IsActive:     m.IsActive,
	}
}
