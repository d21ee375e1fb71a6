package repository

import (
	"context"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(ctx context.Context, t *model.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

type tenantRepo struct{ db *gorm.DB }

func (r *tenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *tenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var t model.Tenant
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *tenantRepo) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var t model.Tenant
	if err := r.db.WithContext(ctx).Where("slug = ? AND ativo = true", slug).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}
