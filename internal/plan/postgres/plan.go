package postgres

import (
	"errors"

	"gorm.io/gorm"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/plan"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(p *plan.Plan) error {
	if err := r.db.Create(p).Error; err != nil {
		return internal.NewConnectivityError("record store unreachable", err)
	}
	return nil
}

func (r *PlanRepository) GetByID(id string) (*plan.Plan, error) {
	var p plan.Plan
	if err := r.db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPlanNotFound
		}
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return &p, nil
}

func (r *PlanRepository) GetAll(filter plan.ListFilter) ([]plan.Plan, error) {
	query := r.db.Model(&plan.Plan{})

	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.WeekNumber != "" {
		query = query.Where("week_number = ?", filter.WeekNumber)
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}

	var plans []plan.Plan
	if err := query.Order("date DESC, created_at DESC").Find(&plans).Error; err != nil {
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return plans, nil
}

func (r *PlanRepository) GetByEmployeeID(employeeID string) ([]plan.Plan, error) {
	var plans []plan.Plan
	err := r.db.Where("employee_id = ?", employeeID).
		Order("date DESC, created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, internal.NewConnectivityError("record store unreachable", err)
	}
	return plans, nil
}

func (r *PlanRepository) ExistsForEmployeeDate(employeeID, date string) (bool, error) {
	var count int64
	err := r.db.Model(&plan.Plan{}).
		Where("employee_id = ? AND date = ?", employeeID, date).
		Count(&count).Error
	if err != nil {
		return false, internal.NewConnectivityError("record store unreachable", err)
	}
	return count > 0, nil
}

func (r *PlanRepository) Update(p *plan.Plan) error {
	// Save writes every column so cleared fields like returned_reason stick.
	result := r.db.Save(p)
	if result.Error != nil {
		return internal.NewConnectivityError("record store unreachable", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepository) DeleteByEmployeeID(employeeID string) (int64, error) {
	result := r.db.Where("employee_id = ?", employeeID).Delete(&plan.Plan{})
	if result.Error != nil {
		return 0, internal.NewConnectivityError("record store unreachable", result.Error)
	}
	return result.RowsAffected, nil
}
