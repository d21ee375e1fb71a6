package repository

import (
	"context"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OperadorRepository interface {
	Create(ctx context.Context, o *model.Operador) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Operador, error)
	// FindAtivoByCodigo returns the active operator with the given till id.
	FindAtivoByCodigo(ctx context.Context, tenantID uuid.UUID, codigo string) (*model.Operador, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.Operador, error)
	UpdateSegredo(ctx context.Context, id uuid.UUID, segredo string) error
	Desativar(ctx context.Context, tenantID, id uuid.UUID) error
}

type operadorRepo struct{ db *gorm.DB }

func (r *operadorRepo) Create(ctx context.Context, o *model.Operador) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *operadorRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Operador, error) {
	var o model.Operador
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *operadorRepo) FindAtivoByCodigo(ctx context.Context, tenantID uuid.UUID, codigo string) (*model.Operador, error) {
	var o model.Operador
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND codigo = ? AND ativo = true", tenantID, codigo).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *operadorRepo) List(ctx context.Context, tenantID uuid.UUID) ([]model.Operador, error) {
	var ops []model.Operador
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("nome ASC").Find(&ops).Error
	return ops, err
}

func (r *operadorRepo) UpdateSegredo(ctx context.Context, id uuid.UUID, segredo string) error {
	res := r.db.WithContext(ctx).Model(&model.Operador{}).Where("id = ?", id).Update("segredo", segredo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *operadorRepo) Desativar(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Operador{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("ativo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
