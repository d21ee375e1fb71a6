package service

import (
	"context"
	"errors"
	"time"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CaixaService interface {
	Abrir(ctx context.Context, op OperadorContext, pdvID uuid.UUID, valorInicial decimal.Decimal) (*dto.AberturaResponse, error)
	// RegistrarMovimento records a sangria or suprimento on the drawer bound to op.
	RegistrarMovimento(ctx context.Context, op OperadorContext, pdvID uuid.UUID, tipo string, valor decimal.Decimal, motivo string) (*dto.MovimentoResponse, error)
	Atual(ctx context.Context, op OperadorContext, pdvID uuid.UUID) (*dto.ResumoCaixaResponse, error)
	Fechar(ctx context.Context, op OperadorContext, pdvID uuid.UUID, observacao *string) (*dto.ResumoCaixaResponse, error)
	// FecharSessao is the administrative close. It is the only way to close a
	// session left open on a prior day; fechadoEm may backdate the close.
	FecharSessao(ctx context.Context, tenantID, sessaoID uuid.UUID, req dto.FecharSessaoRequest) (*dto.ResumoCaixaResponse, error)
	Relatorio(ctx context.Context, tenantID, sessaoID uuid.UUID) (*dto.ResumoCaixaResponse, error)
	// PendentesDiaAnterior lists sessions still open from before today.
	PendentesDiaAnterior(ctx context.Context, limit int) ([]model.SessaoCaixa, error)
}

type caixaService struct {
	store   repository.Store
	locker  Locker
	jobs    Jobs
	relogio Relogio
}

func NewCaixaService(store repository.Store, locker Locker, jobs Jobs, relogio Relogio) CaixaService {
	return &caixaService{store: store, locker: locker, jobs: jobs, relogio: relogio}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, op OperadorContext, pdvID uuid.UUID, valorInicial decimal.Decimal) (*dto.AberturaResponse, error) {
	if valorInicial.IsNegative() {
		return nil, apierror.Validation("", "O valor inicial não pode ser negativo")
	}
	if err := emCentavos("valor_inicial", valorInicial); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, "operador:"+op.OperadorID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	agora := s.relogio.Agora()
	var resp dto.AberturaResponse
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, err := tx.PDVs().FindByID(ctx, op.TenantID, pdvID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("PDV não encontrado")
			}
			return err
		}

		aberta, err := tx.Sessoes().FindAbertaPorPDV(ctx, pdv.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if aberta != nil {
			if s.relogio.MesmoDia(aberta.AbertoEm, agora) {
				return apierror.Conflict(apierror.CodeAlreadyOpenToday, "Já existe um caixa aberto hoje neste PDV")
			}
			return errPendenteDiaAnterior()
		}
		if pdv.Status != model.PDVFechado {
			return apierror.NotFound("PDV não encontrado ou já está aberto")
		}

		if err := tx.PDVs().Vincular(ctx, pdv.ID, op.OperadorID); err != nil {
			return bindError(err)
		}
		sessao := &model.SessaoCaixa{
			TenantID:     op.TenantID,
			PDVID:        pdv.ID,
			OperadorID:   op.OperadorID,
			ValorInicial: valorInicial,
			AbertoEm:     agora,
		}
		if err := tx.Sessoes().Create(ctx, sessao); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apierror.Conflict(apierror.CodeAlreadyOpenToday, "Já existe um caixa aberto hoje neste PDV")
			}
			return err
		}

		atualizado, err := tx.PDVs().FindByID(ctx, op.TenantID, pdv.ID)
		if err != nil {
			return err
		}
		resp = dto.AberturaResponse{PDV: pdvToResponse(atualizado), Sessao: sessaoToResponse(sessao)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("pdv_id", pdvID.String()).
		Str("operador_id", op.OperadorID.String()).
		Str("valor_inicial", valorInicial.StringFixed(2)).
		Msg("caixa aberto")
	return &resp, nil
}

// emCentavos refuses amounts with more than two decimal places; money columns
// are decimal(12,2).
func emCentavos(campo string, v decimal.Decimal) error {
	if !v.Equal(v.Round(2)) {
		return apierror.Validation("", campo+" deve ter no máximo duas casas decimais")
	}
	return nil
}

// caixaOperavel loads the drawer and its open session and checks that op may
// act on them today.
func caixaOperavel(ctx context.Context, tx repository.Store, relogio Relogio, op OperadorContext, pdvID uuid.UUID) (*model.PDV, *model.SessaoCaixa, error) {
	pdv, err := tx.PDVs().FindByID(ctx, op.TenantID, pdvID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apierror.NotFound("PDV não encontrado")
		}
		return nil, nil, err
	}
	sessao, err := tx.Sessoes().FindAbertaPorPDV(ctx, pdv.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apierror.InvalidState("Não há caixa aberto neste PDV")
		}
		return nil, nil, err
	}
	if !relogio.MesmoDia(sessao.AbertoEm, relogio.Agora()) {
		return nil, nil, errPendenteDiaAnterior()
	}
	if !pdv.VinculadoA(op.OperadorID) {
		return nil, nil, apierror.InvalidState("PDV não está vinculado a este operador")
	}
	return pdv, sessao, nil
}

// ── RegistrarMovimento ────────────────────────────────────────────────────────
// Movements are immutable: no update or delete.

func (s *caixaService) RegistrarMovimento(ctx context.Context, op OperadorContext, pdvID uuid.UUID, tipo string, valor decimal.Decimal, motivo string) (*dto.MovimentoResponse, error) {
	if tipo != model.MovimentoSangria && tipo != model.MovimentoSuprimento {
		return nil, apierror.Validation("", "Tipo de movimento inválido")
	}
	if !valor.IsPositive() {
		return nil, apierror.Validation("", "O valor deve ser maior que zero")
	}
	if err := emCentavos("valor", valor); err != nil {
		return nil, err
	}

	var mov *model.MovimentoCaixa
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, _, err := caixaOperavel(ctx, tx, s.relogio, op, pdvID)
		if err != nil {
			return err
		}
		mov = &model.MovimentoCaixa{
			TenantID:   op.TenantID,
			PDVID:      pdv.ID,
			OperadorID: *pdv.OperadorID,
			Tipo:       tipo,
			Valor:      valor,
			Motivo:     motivo,
			Data:       s.relogio.Agora(),
		}
		return tx.Movimentos().Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("pdv_id", pdvID.String()).
		Str("tipo", tipo).
		Str("valor", valor.StringFixed(2)).
		Msg("movimento de caixa registrado")
	resp := movimentoToResponse(mov)
	return &resp, nil
}

// ── Atual ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Atual(ctx context.Context, op OperadorContext, pdvID uuid.UUID) (*dto.ResumoCaixaResponse, error) {
	var resumo *dto.ResumoCaixaResponse
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, sessao, err := caixaOperavel(ctx, tx, s.relogio, op, pdvID)
		if err != nil {
			return err
		}
		resumo, err = s.resumir(ctx, tx, pdv, sessao, s.relogio.Agora())
		return err
	})
	if err != nil {
		return nil, err
	}
	return resumo, nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────

func (s *caixaService) Fechar(ctx context.Context, op OperadorContext, pdvID uuid.UUID, observacao *string) (*dto.ResumoCaixaResponse, error) {
	unlock, err := s.locker.Lock(ctx, "operador:"+op.OperadorID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var resumo *dto.ResumoCaixaResponse
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, sessao, err := caixaOperavel(ctx, tx, s.relogio, op, pdvID)
		if err != nil {
			return err
		}
		fechadoPor := op.OperadorID
		resumo, err = s.fechar(ctx, tx, pdv, sessao, s.relogio.Agora(), observacao, &fechadoPor)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.aposFechar(ctx, op.TenantID, resumo)
	return resumo, nil
}

func (s *caixaService) FecharSessao(ctx context.Context, tenantID, sessaoID uuid.UUID, req dto.FecharSessaoRequest) (*dto.ResumoCaixaResponse, error) {
	agora := s.relogio.Agora()
	var resumo *dto.ResumoCaixaResponse
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		sessao, err := tx.Sessoes().FindByID(ctx, tenantID, sessaoID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Sessão de caixa não encontrada")
			}
			return err
		}
		if !sessao.Aberta() {
			return apierror.InvalidState("Sessão de caixa já está fechada")
		}
		fim := agora
		if req.FechadoEm != nil {
			fim = req.FechadoEm.In(agora.Location())
			if fim.Before(sessao.AbertoEm) || fim.After(agora) {
				return apierror.Validation("", "fechado_em deve estar entre a abertura e o momento atual")
			}
		}
		pdv, err := tx.PDVs().FindByID(ctx, tenantID, sessao.PDVID)
		if err != nil {
			return err
		}
		resumo, err = s.fechar(ctx, tx, pdv, sessao, fim, req.Observacao, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.aposFechar(ctx, tenantID, resumo)
	return resumo, nil
}

// fechar snapshots the totals over [AbertoEm, fim), releases the drawer and
// marks the session closed. Closing twice is refused by the conditional update.
func (s *caixaService) fechar(ctx context.Context, tx repository.Store, pdv *model.PDV, sessao *model.SessaoCaixa, fim time.Time, observacao *string, fechadoPor *uuid.UUID) (*dto.ResumoCaixaResponse, error) {
	resumo, err := s.resumir(ctx, tx, pdv, sessao, fim)
	if err != nil {
		return nil, err
	}

	if err := tx.PDVs().Liberar(ctx, pdv.ID); err != nil && !errors.Is(err, repository.ErrStaleState) {
		return nil, err
	}

	valorFinal := resumo.ValorFinal
	totalVendas := resumo.TotalVendas
	totalSangrias := resumo.TotalSangrias
	totalSuprimentos := resumo.TotalSuprimentos
	sessao.FechadoEm = &fim
	sessao.ValorFinal = &valorFinal
	sessao.Observacao = observacao
	sessao.FechadoPor = fechadoPor
	sessao.TotalVendas = &totalVendas
	sessao.TotalSangrias = &totalSangrias
	sessao.TotalSuprimentos = &totalSuprimentos
	sessao.QtdVendas = resumo.QtdVendas
	sessao.QtdSangrias = resumo.QtdSangrias
	sessao.QtdSuprimentos = resumo.QtdSuprimentos
	if err := tx.Sessoes().Fechar(ctx, sessao); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, apierror.InvalidState("Sessão de caixa já está fechada")
		}
		return nil, err
	}

	resumo.Status = "FECHADA"
	resumo.Sessao = sessaoToResponse(sessao)
	pdv.Status = model.PDVFechado
	pdv.OperadorID = nil
	resumo.PDV = pdvToResponse(pdv)
	return resumo, nil
}

func (s *caixaService) aposFechar(ctx context.Context, tenantID uuid.UUID, resumo *dto.ResumoCaixaResponse) {
	log.Info().
		Str("sessao_id", resumo.Sessao.ID).
		Str("pdv", resumo.PDV.Nome).
		Str("valor_final", resumo.ValorFinal.StringFixed(2)).
		Int("qtd_vendas", resumo.QtdVendas).
		Msg("caixa fechado")
	if s.jobs == nil {
		return
	}
	sessaoID, err := uuid.Parse(resumo.Sessao.ID)
	if err != nil {
		return
	}
	if err := s.jobs.EnqueueFechamento(ctx, tenantID, sessaoID); err != nil {
		log.Warn().Err(err).Str("sessao_id", resumo.Sessao.ID).Msg("falha ao enfileirar relatório de fechamento")
	}
}

// ── Relatorio ─────────────────────────────────────────────────────────────────

// Relatorio reports a session. A closed session reports its stored snapshot;
// the lists are read again over its window.
func (s *caixaService) Relatorio(ctx context.Context, tenantID, sessaoID uuid.UUID) (*dto.ResumoCaixaResponse, error) {
	sessao, err := s.store.Sessoes().FindByID(ctx, tenantID, sessaoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Sessão de caixa não encontrada")
		}
		return nil, err
	}
	pdv, err := s.store.PDVs().FindByID(ctx, tenantID, sessao.PDVID)
	if err != nil {
		return nil, err
	}
	fim := s.relogio.Agora()
	if sessao.FechadoEm != nil {
		fim = *sessao.FechadoEm
	}
	resumo, err := s.resumir(ctx, s.store, pdv, sessao, fim)
	if err != nil {
		return nil, err
	}
	if !sessao.Aberta() {
		resumo.Status = "FECHADA"
		if sessao.ValorFinal != nil {
			resumo.ValorFinal = *sessao.ValorFinal
		}
		if sessao.TotalVendas != nil {
			resumo.TotalVendas = *sessao.TotalVendas
		}
		if sessao.TotalSangrias != nil {
			resumo.TotalSangrias = *sessao.TotalSangrias
		}
		if sessao.TotalSuprimentos != nil {
			resumo.TotalSuprimentos = *sessao.TotalSuprimentos
		}
		resumo.QtdVendas = sessao.QtdVendas
		resumo.QtdSangrias = sessao.QtdSangrias
		resumo.QtdSuprimentos = sessao.QtdSuprimentos
	}
	return resumo, nil
}

func (s *caixaService) PendentesDiaAnterior(ctx context.Context, limit int) ([]model.SessaoCaixa, error) {
	agora := s.relogio.Agora()
	inicioDoDia := time.Date(agora.Year(), agora.Month(), agora.Day(), 0, 0, 0, 0, agora.Location())
	return s.store.Sessoes().ListAbertasAntesDe(ctx, inicioDoDia, limit)
}

// resumir aggregates accepted sales and movements over [AbertoEm, fim).
// valor_final = valor_inicial + vendas + suprimentos - sangrias.
func (s *caixaService) resumir(ctx context.Context, tx repository.Store, pdv *model.PDV, sessao *model.SessaoCaixa, fim time.Time) (*dto.ResumoCaixaResponse, error) {
	vendas, err := tx.Vendas().ListAceitasPorPeriodo(ctx, pdv.ID, sessao.AbertoEm, fim)
	if err != nil {
		return nil, err
	}
	movs, err := tx.Movimentos().ListPorPeriodo(ctx, pdv.ID, sessao.AbertoEm, fim)
	if err != nil {
		return nil, err
	}

	resumo := &dto.ResumoCaixaResponse{
		Sessao:           sessaoToResponse(sessao),
		PDV:              pdvToResponse(pdv),
		Status:           "ABERTA",
		ValorInicial:     sessao.ValorInicial,
		TotalVendas:      decimal.Zero,
		TotalSangrias:    decimal.Zero,
		TotalSuprimentos: decimal.Zero,
		Vendas:           make([]dto.VendaResumo, 0, len(vendas)),
		Sangrias:         []dto.MovimentoResponse{},
		Suprimentos:      []dto.MovimentoResponse{},
	}
	if tenant, err := tx.Tenants().FindByID(ctx, sessao.TenantID); err == nil {
		resumo.Estabelecimento = tenant.Nome
	}
	if operador, err := tx.Operadores().FindByID(ctx, sessao.TenantID, sessao.OperadorID); err == nil {
		resumo.Operador = operadorResumo(operador)
	}

	for _, v := range vendas {
		resumo.TotalVendas = resumo.TotalVendas.Add(v.Valor)
		resumo.Vendas = append(resumo.Vendas, dto.VendaResumo{
			ID:      v.ID.String(),
			NrVenda: v.NrVenda,
			Valor:   v.Valor,
			Data:    v.Data,
		})
	}
	for i := range movs {
		m := &movs[i]
		switch m.Tipo {
		case model.MovimentoSangria:
			resumo.TotalSangrias = resumo.TotalSangrias.Add(m.Valor)
			resumo.Sangrias = append(resumo.Sangrias, movimentoToResponse(m))
		case model.MovimentoSuprimento:
			resumo.TotalSuprimentos = resumo.TotalSuprimentos.Add(m.Valor)
			resumo.Suprimentos = append(resumo.Suprimentos, movimentoToResponse(m))
		}
	}
	resumo.QtdVendas = len(resumo.Vendas)
	resumo.QtdSangrias = len(resumo.Sangrias)
	resumo.QtdSuprimentos = len(resumo.Suprimentos)
	resumo.ValorFinal = sessao.ValorInicial.
		Add(resumo.TotalVendas).
		Add(resumo.TotalSuprimentos).
		Sub(resumo.TotalSangrias)
	return resumo, nil
}
