package repository

import (
	"context"
	"time"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessaoRepository interface {
	Create(ctx context.Context, s *model.SessaoCaixa) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.SessaoCaixa, error)
	FindAbertaPorPDV(ctx context.Context, pdvID uuid.UUID) (*model.SessaoCaixa, error)
	// ListAbertasAntesDe returns unclosed sessions opened before t, oldest first.
	ListAbertasAntesDe(ctx context.Context, t time.Time, limit int) ([]model.SessaoCaixa, error)
	// Fechar persists the closing snapshot only if the session is still open.
	Fechar(ctx context.Context, s *model.SessaoCaixa) error
}

type MovimentoRepository interface {
	Create(ctx context.Context, m *model.MovimentoCaixa) error
	// ListPorPeriodo returns movements of a drawer with de <= Data < ate.
	ListPorPeriodo(ctx context.Context, pdvID uuid.UUID, de, ate time.Time) ([]model.MovimentoCaixa, error)
}

type sessaoRepo struct{ db *gorm.DB }

func (r *sessaoRepo) Create(ctx context.Context, s *model.SessaoCaixa) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *sessaoRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *sessaoRepo) FindAbertaPorPDV(ctx context.Context, pdvID uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).
		Where("pdv_id = ? AND fechado_em IS NULL", pdvID).
		Order("aberto_em DESC").
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *sessaoRepo) ListAbertasAntesDe(ctx context.Context, t time.Time, limit int) ([]model.SessaoCaixa, error) {
	var sessoes []model.SessaoCaixa
	err := r.db.WithContext(ctx).
		Where("fechado_em IS NULL AND aberto_em < ?", t).
		Order("aberto_em ASC").
		Limit(limit).
		Find(&sessoes).Error
	return sessoes, err
}

func (r *sessaoRepo) Fechar(ctx context.Context, s *model.SessaoCaixa) error {
	res := r.db.WithContext(ctx).Model(&model.SessaoCaixa{}).
		Where("id = ? AND fechado_em IS NULL", s.ID).
		Updates(map[string]any{
			"fechado_em":        s.FechadoEm,
			"valor_final":       s.ValorFinal,
			"observacao":        s.Observacao,
			"fechado_por":       s.FechadoPor,
			"total_vendas":      s.TotalVendas,
			"total_sangrias":    s.TotalSangrias,
			"total_suprimentos": s.TotalSuprimentos,
			"qtd_vendas":        s.QtdVendas,
			"qtd_sangrias":      s.QtdSangrias,
			"qtd_suprimentos":   s.QtdSuprimentos,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

type movimentoRepo struct{ db *gorm.DB }

func (r *movimentoRepo) Create(ctx context.Context, m *model.MovimentoCaixa) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimentoRepo) ListPorPeriodo(ctx context.Context, pdvID uuid.UUID, de, ate time.Time) ([]model.MovimentoCaixa, error) {
	var movs []model.MovimentoCaixa
	err := r.db.WithContext(ctx).
		Where("pdv_id = ? AND data >= ? AND data < ?", pdvID, de, ate).
		Order("data ASC").
		Find(&movs).Error
	return movs, err
}
