package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cashdesk/internal/model"
)

type OperatorRepository interface {
	Create(ctx context.Context, o *model.Operator) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Operator, error)
	FindByUsername(ctx context.Context, username string) (*model.Operator, error)
}

type operatorRepo struct{ db *gorm.DB }

func NewOperatorRepository(db *gorm.DB) OperatorRepository { return &operatorRepo{db: db} }

func (r *operatorRepo) Create(ctx context.Context, o *model.Operator) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *operatorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	var o model.Operator
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *operatorRepo) FindByUsername(ctx context.Context, username string) (*model.Operator, error) {
	var o model.Operator
	if err := r.db.WithContext(ctx).First(&o, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}
