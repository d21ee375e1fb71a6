package repository

import (
	"context"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenciaVenda names the per-tenant counter behind nrVenda.
const SequenciaVenda = "venda"

type SequenciaRepository interface {
	// NextVenda issues the next sale number of a tenant. It must run inside a
	// transaction: the counter row stays locked until commit, so concurrent
	// callers receive distinct contiguous numbers.
	NextVenda(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type sequenciaRepo struct{ db *gorm.DB }

func (r *sequenciaRepo) NextVenda(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)

	// First use for a tenant: seed the counter from the highest existing number.
	var seed int64
	if err := db.Model(&model.Venda{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(numero), 0)").
		Scan(&seed).Error; err != nil {
		return 0, err
	}
	row := model.Sequencia{TenantID: tenantID, Nome: SequenciaVenda, Ultimo: seed}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return 0, err
	}

	var seq model.Sequencia
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND nome = ?", tenantID, SequenciaVenda).
		First(&seq).Error; err != nil {
		return 0, translate(err)
	}
	seq.Ultimo++
	if err := db.Model(&model.Sequencia{}).
		Where("tenant_id = ? AND nome = ?", tenantID, SequenciaVenda).
		Update("ultimo", seq.Ultimo).Error; err != nil {
		return 0, err
	}
	return seq.Ultimo, nil
}
