package infra

import (
	"deliverypdv/internal/dto"
)

// CupomFromDTO converts the receipt view into its printable form.
func CupomFromDTO(c *dto.CupomResponse) Cupom {
	out := Cupom{
		Estabelecimento: c.Estabelecimento,
		PDV:             c.PDV,
		Operador:        c.Operador,
		NrVenda:         c.Venda.NrVenda,
		Status:          c.Venda.Status,
		FormaPagamento:  c.FormaPagamento,
		Data:            c.Venda.Data,
		Itens:           make([]CupomLinha, 0, len(c.Itens)),
		TaxaEntrega:     c.TaxaEntrega,
		Total:           c.Total,
		Troco:           c.Troco,
	}
	for _, it := range c.Itens {
		out.Itens = append(out.Itens, CupomLinha{Nome: it.Nome, Quantidade: it.Quantidade, Subtotal: it.Subtotal})
	}
	return out
}

// FechamentoFromDTO converts a closed session report into its printable form.
func FechamentoFromDTO(r *dto.ResumoCaixaResponse) Fechamento {
	f := Fechamento{
		Estabelecimento:  r.Estabelecimento,
		PDV:              r.PDV.Nome,
		AbertoEm:         r.Sessao.AbertoEm,
		ValorInicial:     r.ValorInicial,
		TotalVendas:      r.TotalVendas,
		TotalSuprimentos: r.TotalSuprimentos,
		TotalSangrias:    r.TotalSangrias,
		ValorFinal:       r.ValorFinal,
		QtdVendas:        r.QtdVendas,
		QtdSangrias:      r.QtdSangrias,
		QtdSuprimentos:   r.QtdSuprimentos,
	}
	if r.Operador != nil {
		f.Operador = r.Operador.Nome
	}
	if r.Sessao.FechadoEm != nil {
		f.FechadoEm = *r.Sessao.FechadoEm
	}
	if r.Sessao.Observacao != nil {
		f.Observacao = *r.Sessao.Observacao
	}
	return f
}
