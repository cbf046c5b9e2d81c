package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cashdesk/internal/model"
)

type RegisterRepository interface {
	Create(ctx context.Context, r *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	List(ctx context.Context, activeOnly bool) ([]model.CashRegister, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, reg *model.CashRegister) error {
	return translate(r.db.WithContext(ctx).Create(reg).Error)
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &reg, nil
}

func (r *registerRepo) List(ctx context.Context, activeOnly bool) ([]model.CashRegister, error) {
	q := r.db.WithContext(ctx).Order("number ASC")
	if activeOnly {
		q = q.Where("active = true")
	}
	var regs []model.CashRegister
	if err := q.Find(&regs).Error; err != nil {
		return nil, translate(err)
	}
	return regs, nil
}

func (r *registerRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.CashRegister{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
