package service

import (
	"context"
	"errors"
	"strings"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type VendaService interface {
	// RegistrarPDV records a walk-in sale at the till. The order and the sale
	// are created in one transaction and the sale is ACEITO.
	RegistrarPDV(ctx context.Context, op OperadorContext, req dto.RegistrarVendaPDVRequest) (*dto.CupomResponse, error)
	// Registrar links a PENDENTE sale to an existing delivery order.
	Registrar(ctx context.Context, tenantID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	Cancelar(ctx context.Context, tenantID, vendaID uuid.UUID) (*dto.VendaResponse, error)
	CancelarPorNumero(ctx context.Context, op OperadorContext, pdvID uuid.UUID, nrVenda string) (*dto.VendaResponse, error)
	CancelarUltima(ctx context.Context, op OperadorContext, pdvID uuid.UUID) (*dto.VendaResponse, error)
	AlterarStatus(ctx context.Context, tenantID, vendaID uuid.UUID, status string) (*dto.VendaResponse, error)
}

type vendaService struct {
	store   repository.Store
	jobs    Jobs
	relogio Relogio
}

func NewVendaService(store repository.Store, jobs Jobs, relogio Relogio) VendaService {
	return &vendaService{store: store, jobs: jobs, relogio: relogio}
}

// ── RegistrarPDV ──────────────────────────────────────────────────────────────

func (s *vendaService) RegistrarPDV(ctx context.Context, op OperadorContext, req dto.RegistrarVendaPDVRequest) (*dto.CupomResponse, error) {
	pdvID, err := uuid.Parse(req.PDVID)
	if err != nil {
		return nil, apierror.Validation("", "pdv_id inválido")
	}
	formaID, err := uuid.Parse(req.FormaPagamentoID)
	if err != nil {
		return nil, apierror.Validation(apierror.CodeInvalidPaymentMethod, "forma_pagamento_id inválido")
	}

	itens := make([]model.PedidoItem, 0, len(req.Itens))
	subtotal := decimal.Zero
	for _, it := range req.Itens {
		if err := emCentavos("preco", it.Preco); err != nil {
			return nil, err
		}
		item := model.PedidoItem{
			ProdutoID:  it.ProdutoID,
			Nome:       strings.TrimSpace(it.Nome),
			Preco:      it.Preco,
			Quantidade: it.Quantidade,
		}
		subtotal = subtotal.Add(item.Subtotal())
		itens = append(itens, item)
	}
	if err := emCentavos("taxa_entrega", req.TaxaEntrega); err != nil {
		return nil, err
	}
	valor := subtotal.Add(req.TaxaEntrega)
	if !valor.IsPositive() {
		return nil, apierror.Validation("", "O valor da venda deve ser maior que zero")
	}
	var troco *decimal.Decimal
	if req.ValorRecebido != nil {
		if err := emCentavos("valor_recebido", *req.ValorRecebido); err != nil {
			return nil, err
		}
		if req.ValorRecebido.LessThan(valor) {
			return nil, apierror.Validation(apierror.CodeInsufficientPayment, "Valor recebido menor que o total da venda")
		}
		t := req.ValorRecebido.Sub(valor)
		troco = &t
	}

	var venda *model.Venda
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, _, err := caixaOperavel(ctx, tx, s.relogio, op, pdvID)
		if err != nil {
			return err
		}
		if _, err := formaPagamentoAtiva(ctx, tx, op.TenantID, formaID); err != nil {
			return err
		}

		pedido := &model.Pedido{
			TenantID:         op.TenantID,
			Status:           model.PedidoPago,
			Origem:           pdv.Nome,
			FormaPagamentoID: formaID,
			Subtotal:         subtotal,
			TaxaEntrega:      req.TaxaEntrega,
			Preco:            valor,
			Troco:            troco,
			Itens:            itens,
		}
		if err := tx.Pedidos().Create(ctx, pedido); err != nil {
			return err
		}

		numero, err := tx.Sequencias().NextVenda(ctx, op.TenantID)
		if err != nil {
			return err
		}
		operadorID := op.OperadorID
		venda = &model.Venda{
			TenantID:         op.TenantID,
			Numero:           numero,
			NrVenda:          model.FormatarNrVenda(numero),
			Valor:            valor,
			Status:           model.VendaAceito,
			FormaPagamentoID: formaID,
			PDVID:            &pdv.ID,
			OperadorID:       &operadorID,
			PedidoID:         pedido.ID,
			Data:             s.relogio.Agora(),
		}
		return tx.Vendas().Create(ctx, venda)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venda_id", venda.ID.String()).
		Str("nr_venda", venda.NrVenda).
		Str("valor", venda.Valor.StringFixed(2)).
		Msg("venda registrada no PDV")

	if s.jobs != nil {
		if err := s.jobs.EnqueueCupom(ctx, op.TenantID, venda.ID); err != nil {
			log.Warn().Err(err).Str("venda_id", venda.ID.String()).Msg("falha ao enfileirar cupom")
		}
	}

	completa, err := s.store.Vendas().FindByID(ctx, op.TenantID, venda.ID)
	if err != nil {
		return nil, err
	}
	estabelecimento := ""
	if tenant, err := s.store.Tenants().FindByID(ctx, op.TenantID); err == nil {
		estabelecimento = tenant.Nome
	}
	return montarCupom(estabelecimento, completa), nil
}

func formaPagamentoAtiva(ctx context.Context, tx repository.Store, tenantID, id uuid.UUID) (*model.FormaPagamento, error) {
	forma, err := tx.FormasPagamento().FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.Validation(apierror.CodeInvalidPaymentMethod, "Forma de pagamento inválida")
		}
		return nil, err
	}
	if !forma.Ativo {
		return nil, apierror.Validation(apierror.CodeInvalidPaymentMethod, "Forma de pagamento inativa")
	}
	return forma, nil
}

// ── Registrar ─────────────────────────────────────────────────────────────────

func (s *vendaService) Registrar(ctx context.Context, tenantID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	pedidoID, err := uuid.Parse(req.PedidoID)
	if err != nil {
		return nil, apierror.Validation("", "pedido_id inválido")
	}
	formaID, err := uuid.Parse(req.FormaPagamentoID)
	if err != nil {
		return nil, apierror.Validation(apierror.CodeInvalidPaymentMethod, "forma_pagamento_id inválido")
	}
	if err := emCentavos("valor", req.Valor); err != nil {
		return nil, err
	}

	var venda *model.Venda
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		pedido, err := tx.Pedidos().FindByID(ctx, tenantID, pedidoID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Pedido não encontrado")
			}
			return err
		}
		if _, err := tx.Vendas().FindByPedido(ctx, pedido.ID); err == nil {
			return apierror.Conflict(apierror.CodeOrderAlreadyLinked, "Pedido já possui uma venda")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if pedido.Status == model.PedidoCancelado {
			return apierror.InvalidState("Pedido cancelado")
		}
		if _, err := formaPagamentoAtiva(ctx, tx, tenantID, formaID); err != nil {
			return err
		}

		valor := req.Valor
		if valor.IsZero() {
			valor = pedido.Preco
		}
		if !valor.IsPositive() {
			return apierror.Validation("", "O valor da venda deve ser maior que zero")
		}

		numero, err := tx.Sequencias().NextVenda(ctx, tenantID)
		if err != nil {
			return err
		}
		venda = &model.Venda{
			TenantID:         tenantID,
			Numero:           numero,
			NrVenda:          model.FormatarNrVenda(numero),
			Valor:            valor,
			Status:           model.VendaPendente,
			FormaPagamentoID: formaID,
			PedidoID:         pedido.ID,
			Data:             s.relogio.Agora(),
		}
		if err := tx.Vendas().Create(ctx, venda); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apierror.Conflict(apierror.CodeOrderAlreadyLinked, "Pedido já possui uma venda")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("venda_id", venda.ID.String()).Str("pedido_id", pedidoID.String()).Msg("venda de delivery registrada")
	resp := vendaToResponse(venda)
	return &resp, nil
}

// ── Cancelamento ──────────────────────────────────────────────────────────────

func (s *vendaService) Cancelar(ctx context.Context, tenantID, vendaID uuid.UUID) (*dto.VendaResponse, error) {
	var venda *model.Venda
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		v, err := tx.Vendas().FindByID(ctx, tenantID, vendaID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Venda não encontrada")
			}
			return err
		}
		venda = v
		return cancelar(ctx, tx, v)
	})
	if err != nil {
		return nil, err
	}
	return s.cancelada(venda), nil
}

func (s *vendaService) CancelarPorNumero(ctx context.Context, op OperadorContext, pdvID uuid.UUID, nrVenda string) (*dto.VendaResponse, error) {
	nr := NormalizarNrVenda(nrVenda)
	var venda *model.Venda
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, _, err := caixaOperavel(ctx, tx, s.relogio, op, pdvID)
		if err != nil {
			return err
		}
		v, err := tx.Vendas().FindByNumero(ctx, op.TenantID, pdv.ID, nr)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Venda não encontrada neste PDV")
			}
			return err
		}
		venda = v
		return cancelar(ctx, tx, v)
	})
	if err != nil {
		return nil, err
	}
	return s.cancelada(venda), nil
}

func (s *vendaService) CancelarUltima(ctx context.Context, op OperadorContext, pdvID uuid.UUID) (*dto.VendaResponse, error) {
	var venda *model.Venda
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, _, err := caixaOperavel(ctx, tx, s.relogio, op, pdvID)
		if err != nil {
			return err
		}
		v, err := tx.Vendas().FindUltima(ctx, op.TenantID, pdv.ID, model.VendaAceito)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Nenhuma venda para cancelar neste PDV")
			}
			return err
		}
		venda = v
		return cancelar(ctx, tx, v)
	})
	if err != nil {
		return nil, err
	}
	return s.cancelada(venda), nil
}

// cancelar moves the sale and its order to CANCELADO. Both writes share tx, so
// a failure on the order leaves the sale untouched.
func cancelar(ctx context.Context, tx repository.Store, v *model.Venda) error {
	if v.Status == model.VendaCancelado {
		return apierror.Conflict(apierror.CodeAlreadyCancelled, "Venda já está cancelada")
	}
	if err := sessaoDaVendaAberta(ctx, tx, v); err != nil {
		return err
	}
	if err := tx.Vendas().UpdateStatus(ctx, v.ID, v.Status, model.VendaCancelado); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return apierror.Conflict(apierror.CodeAlreadyCancelled, "Venda já está cancelada")
		}
		return err
	}
	if err := tx.Pedidos().UpdateStatus(ctx, v.PedidoID, model.PedidoCancelado); err != nil {
		return err
	}
	v.Status = model.VendaCancelado
	return nil
}

// sessaoDaVendaAberta refuses changes to a till sale once the session it was
// recorded in has closed. The closing snapshot already counts it.
func sessaoDaVendaAberta(ctx context.Context, tx repository.Store, v *model.Venda) error {
	if v.PDVID == nil {
		return nil
	}
	sessao, err := tx.Sessoes().FindAbertaPorPDV(ctx, *v.PDVID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if sessao == nil || v.Data.Before(sessao.AbertoEm) {
		return apierror.InvalidState("A sessão de caixa desta venda já foi fechada")
	}
	return nil
}

func (s *vendaService) cancelada(v *model.Venda) *dto.VendaResponse {
	log.Info().Str("venda_id", v.ID.String()).Str("nr_venda", v.NrVenda).Msg("venda cancelada")
	resp := vendaToResponse(v)
	return &resp
}

// ── AlterarStatus ─────────────────────────────────────────────────────────────

// ordemStatus ranks the non-terminal statuses. Transitions only move forward;
// CANCELADO is reachable from any of them and is terminal.
var ordemStatus = map[string]int{
	model.VendaPendente:  0,
	model.VendaAceito:    1,
	model.VendaEstornado: 2,
}

func (s *vendaService) AlterarStatus(ctx context.Context, tenantID, vendaID uuid.UUID, status string) (*dto.VendaResponse, error) {
	para, ok := model.NormalizarStatusVenda(status)
	if !ok {
		return nil, apierror.Validation(apierror.CodeInvalidStatus, "Status de venda inválido")
	}

	var venda *model.Venda
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		v, err := tx.Vendas().FindByID(ctx, tenantID, vendaID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Venda não encontrada")
			}
			return err
		}
		venda = v
		if para == model.VendaCancelado {
			return cancelar(ctx, tx, v)
		}
		if v.Status == model.VendaCancelado {
			return apierror.InvalidState("Venda cancelada não pode mudar de status")
		}
		if ordemStatus[para] <= ordemStatus[v.Status] {
			return apierror.InvalidState("Transição de status não permitida: " + v.Status + " → " + para)
		}
		if err := sessaoDaVendaAberta(ctx, tx, v); err != nil {
			return err
		}
		if err := tx.Vendas().UpdateStatus(ctx, v.ID, v.Status, para); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return apierror.InvalidState("O status da venda foi alterado, tente novamente")
			}
			return err
		}
		v.Status = para
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("venda_id", vendaID.String()).Str("status", venda.Status).Msg("status da venda alterado")
	resp := vendaToResponse(venda)
	return &resp, nil
}

// NormalizarNrVenda pads a numeric sale number typed without leading zeros.
func NormalizarNrVenda(nr string) string {
	nr = strings.TrimSpace(nr)
	if nr == "" || len(nr) >= 5 {
		return nr
	}
	for _, r := range nr {
		if r < '0' || r > '9' {
			return nr
		}
	}
	return strings.Repeat("0", 5-len(nr)) + nr
}
