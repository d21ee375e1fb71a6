package repository

import (
	"context"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PedidoRepository interface {
	// Create inserts the order together with its items.
	Create(ctx context.Context, p *model.Pedido) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Pedido, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type FormaPagamentoRepository interface {
	Create(ctx context.Context, f *model.FormaPagamento) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.FormaPagamento, error)
}

type pedidoRepo struct{ db *gorm.DB }

func (r *pedidoRepo) Create(ctx context.Context, p *model.Pedido) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Itens {
		if p.Itens[i].ID == uuid.Nil {
			p.Itens[i].ID = uuid.New()
		}
		p.Itens[i].PedidoID = p.ID
	}
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *pedidoRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).Preload("Itens").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *pedidoRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type formaPagamentoRepo struct{ db *gorm.DB }

func (r *formaPagamentoRepo) Create(ctx context.Context, f *model.FormaPagamento) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *formaPagamentoRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.FormaPagamento, error) {
	var f model.FormaPagamento
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&f).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}
