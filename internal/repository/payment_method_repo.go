package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cashdesk/internal/model"
)

type PaymentMethodRepository interface {
	Create(ctx context.Context, m *model.PaymentMethod) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error)
}

type paymentMethodRepo struct{ db *gorm.DB }

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepo{db: db}
}

func (r *paymentMethodRepo) Create(ctx context.Context, m *model.PaymentMethod) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *paymentMethodRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *paymentMethodRepo) List(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = true")
	}
	var methods []model.PaymentMethod
	if err := q.Find(&methods).Error; err != nil {
		return nil, translate(err)
	}
	return methods, nil
}
