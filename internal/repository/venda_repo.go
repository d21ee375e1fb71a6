package repository

import (
	"context"
	"time"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VendaRepository interface {
	Create(ctx context.Context, v *model.Venda) error
	// FindByID loads the sale with its order items, payment method, drawer and operator.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Venda, error)
	FindByNumero(ctx context.Context, tenantID, pdvID uuid.UUID, nrVenda string) (*model.Venda, error)
	FindByPedido(ctx context.Context, pedidoID uuid.UUID) (*model.Venda, error)
	// FindUltima returns the most recent sale of a drawer; empty status matches any.
	FindUltima(ctx context.Context, tenantID, pdvID uuid.UUID, status string) (*model.Venda, error)
	// ListAceitasPorPeriodo returns ACEITO sales of a drawer with de <= Data < ate.
	ListAceitasPorPeriodo(ctx context.Context, pdvID uuid.UUID, de, ate time.Time) ([]model.Venda, error)
	// UpdateStatus changes the status only if it still equals de.
	UpdateStatus(ctx context.Context, id uuid.UUID, de, para string) error
}

type vendaRepo struct{ db *gorm.DB }

func (r *vendaRepo) Create(ctx context.Context, v *model.Venda) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error)
}

func (r *vendaRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Pedido.Itens").
		Preload("FormaPagamento").
		Preload("PDV").
		Preload("Operador")
}

func (r *vendaRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.preloaded(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&v).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vendaRepo) FindByNumero(ctx context.Context, tenantID, pdvID uuid.UUID, nrVenda string) (*model.Venda, error) {
	var v model.Venda
	err := r.preloaded(ctx).
		Where("tenant_id = ? AND pdv_id = ? AND nr_venda = ?", tenantID, pdvID, nrVenda).
		First(&v).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vendaRepo) FindByPedido(ctx context.Context, pedidoID uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	if err := r.db.WithContext(ctx).Where("pedido_id = ?", pedidoID).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vendaRepo) FindUltima(ctx context.Context, tenantID, pdvID uuid.UUID, status string) (*model.Venda, error) {
	q := r.preloaded(ctx).Where("tenant_id = ? AND pdv_id = ?", tenantID, pdvID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var v model.Venda
	if err := q.Order("data DESC").Order("numero DESC").First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vendaRepo) ListAceitasPorPeriodo(ctx context.Context, pdvID uuid.UUID, de, ate time.Time) ([]model.Venda, error) {
	var vendas []model.Venda
	err := r.db.WithContext(ctx).
		Where("pdv_id = ? AND status = ? AND data >= ? AND data < ?", pdvID, model.VendaAceito, de, ate).
		Order("data ASC").
		Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) UpdateStatus(ctx context.Context, id uuid.UUID, de, para string) error {
	res := r.db.WithContext(ctx).Model(&model.Venda{}).
		Where("id = ? AND status = ?", id, de).
		Update("status", para)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

