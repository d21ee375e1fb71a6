package service

import (
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"

	"github.com/shopspring/decimal"
)

func operadorToResponse(o *model.Operador) dto.OperadorResponse {
	return dto.OperadorResponse{
		ID:     o.ID.String(),
		Codigo: o.Codigo,
		Nome:   o.Nome,
		Ativo:  o.Ativo,
		Papeis: o.ListaPapeis(),
	}
}

func operadorResumo(o *model.Operador) *dto.OperadorResumo {
	if o == nil {
		return nil
	}
	return &dto.OperadorResumo{ID: o.ID.String(), Codigo: o.Codigo, Nome: o.Nome}
}

func pdvToResponse(p *model.PDV) dto.PDVResponse {
	resp := dto.PDVResponse{ID: p.ID.String(), Nome: p.Nome, Status: p.Status}
	if p.Status == model.PDVAberto {
		resp.Operador = operadorResumo(p.Operador)
	}
	return resp
}

func sessaoToResponse(s *model.SessaoCaixa) dto.SessaoResponse {
	return dto.SessaoResponse{
		ID:           s.ID.String(),
		PDVID:        s.PDVID.String(),
		OperadorID:   s.OperadorID.String(),
		ValorInicial: s.ValorInicial,
		AbertoEm:     s.AbertoEm,
		FechadoEm:    s.FechadoEm,
		ValorFinal:   s.ValorFinal,
		Observacao:   s.Observacao,
	}
}

func movimentoToResponse(m *model.MovimentoCaixa) dto.MovimentoResponse {
	return dto.MovimentoResponse{
		ID:         m.ID.String(),
		Tipo:       m.Tipo,
		Valor:      m.Valor,
		Motivo:     m.Motivo,
		OperadorID: m.OperadorID.String(),
		Data:       m.Data,
	}
}

func vendaToResponse(v *model.Venda) dto.VendaResponse {
	resp := dto.VendaResponse{
		ID:               v.ID.String(),
		NrVenda:          v.NrVenda,
		Valor:            v.Valor,
		Status:           v.Status,
		FormaPagamentoID: v.FormaPagamentoID.String(),
		PedidoID:         v.PedidoID.String(),
		Data:             v.Data,
	}
	if v.PDVID != nil {
		id := v.PDVID.String()
		resp.PDVID = &id
	}
	if v.OperadorID != nil {
		id := v.OperadorID.String()
		resp.OperadorID = &id
	}
	return resp
}

// montarCupom expects v with its relations loaded.
func montarCupom(estabelecimento string, v *model.Venda) *dto.CupomResponse {
	c := &dto.CupomResponse{
		Venda:           vendaToResponse(v),
		Estabelecimento: estabelecimento,
		Total:           v.Valor,
		Subtotal:        decimal.Zero,
		TaxaEntrega:     decimal.Zero,
	}
	if v.PDV != nil {
		c.PDV = v.PDV.Nome
	}
	if v.Operador != nil {
		c.Operador = v.Operador.Nome
	}
	if v.FormaPagamento != nil {
		c.FormaPagamento = v.FormaPagamento.Nome
	}
	if p := v.Pedido; p != nil {
		c.PedidoStatus = p.Status
		c.Subtotal = p.Subtotal
		c.TaxaEntrega = p.TaxaEntrega
		c.Troco = p.Troco
		c.Itens = make([]dto.ItemCupomResponse, 0, len(p.Itens))
		for _, it := range p.Itens {
			c.Itens = append(c.Itens, dto.ItemCupomResponse{
				ProdutoID:  it.ProdutoID,
				Nome:       it.Nome,
				Preco:      it.Preco,
				Quantidade: it.Quantidade,
				Subtotal:   it.Subtotal(),
			})
		}
	}
	return c
}
