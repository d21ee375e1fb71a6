package repository

import (
	"context"
	"errors"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PDVRepository interface {
	Create(ctx context.Context, p *model.PDV) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.PDV, error)
	FindByNome(ctx context.Context, tenantID uuid.UUID, nome string) (*model.PDV, error)
	CountAtivos(ctx context.Context, tenantID uuid.UUID) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.PDV, error)
	// Vincular moves a FECHADO drawer to ABERTO bound to operadorID in one
	// conditional write. ErrOperadorVinculado if the operator holds another
	// open drawer, ErrStaleState if the drawer was not FECHADO.
	Vincular(ctx context.Context, pdvID, operadorID uuid.UUID) error
	// Transferir rebinds an ABERTO drawer from one operator to another.
	Transferir(ctx context.Context, pdvID, de, para uuid.UUID) error
	// Liberar moves an ABERTO drawer back to FECHADO and clears the operator.
	Liberar(ctx context.Context, pdvID uuid.UUID) error
}

type pdvRepo struct{ db *gorm.DB }

const outroPDVAbertoSQL = "NOT EXISTS (SELECT 1 FROM pdvs o WHERE o.operador_id = ? AND o.status = 'ABERTO' AND o.id <> ?)"

func (r *pdvRepo) Create(ctx context.Context, p *model.PDV) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Omit("Operador").Create(p).Error)
}

func (r *pdvRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.PDV, error) {
	var p model.PDV
	err := r.db.WithContext(ctx).Preload("Operador").
		Where("id = ? AND tenant_id = ? AND ativo = true", id, tenantID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *pdvRepo) FindByNome(ctx context.Context, tenantID uuid.UUID, nome string) (*model.PDV, error) {
	var p model.PDV
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND nome = ?", tenantID, nome).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *pdvRepo) CountAtivos(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PDV{}).
		Where("tenant_id = ? AND ativo = true", tenantID).
		Count(&n).Error
	return n, err
}

func (r *pdvRepo) List(ctx context.Context, tenantID uuid.UUID) ([]model.PDV, error) {
	var pdvs []model.PDV
	err := r.db.WithContext(ctx).Preload("Operador").
		Where("tenant_id = ? AND ativo = true", tenantID).
		Order("nome ASC").
		Find(&pdvs).Error
	return pdvs, err
}

func (r *pdvRepo) Vincular(ctx context.Context, pdvID, operadorID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.PDV{}).
		Where("id = ? AND status = ?", pdvID, model.PDVFechado).
		Where(outroPDVAbertoSQL, operadorID, pdvID).
		Updates(map[string]any{"status": model.PDVAberto, "operador_id": operadorID})
	return r.casResult(ctx, res, pdvID, operadorID)
}

func (r *pdvRepo) Transferir(ctx context.Context, pdvID, de, para uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.PDV{}).
		Where("id = ? AND status = ? AND operador_id = ?", pdvID, model.PDVAberto, de).
		Where(outroPDVAbertoSQL, para, pdvID).
		Update("operador_id", para)
	return r.casResult(ctx, res, pdvID, para)
}

func (r *pdvRepo) Liberar(ctx context.Context, pdvID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.PDV{}).
		Where("id = ? AND status = ?", pdvID, model.PDVAberto).
		Updates(map[string]any{"status": model.PDVFechado, "operador_id": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// casResult classifies a conditional bind that may have matched no row.
func (r *pdvRepo) casResult(ctx context.Context, res *gorm.DB, pdvID, operadorID uuid.UUID) error {
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrOperadorVinculado
		}
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PDV{}).
		Where("operador_id = ? AND status = ? AND id <> ?", operadorID, model.PDVAberto, pdvID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrOperadorVinculado
	}
	return ErrStaleState
}
