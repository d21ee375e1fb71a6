package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	ProdutoID  string          `json:"produto_id" validate:"max=64"`
	Nome       string          `json:"nome"       validate:"required,max=120"`
	Preco      decimal.Decimal `json:"preco"      validate:"required,gt=0"`
	Quantidade int             `json:"quantidade" validate:"required,min=1"`
}

// RegistrarVendaPDVRequest is a walk-in sale at the till: the order and the
// sale are created together.
type RegistrarVendaPDVRequest struct {
	CredenciaisOperador
	PDVID            string             `json:"pdv_id"             validate:"required,uuid"`
	FormaPagamentoID string             `json:"forma_pagamento_id" validate:"required,uuid"`
	Itens            []ItemVendaRequest `json:"itens"              validate:"required,min=1,dive"`
	TaxaEntrega      decimal.Decimal    `json:"taxa_entrega"       validate:"min=0"`
	ValorRecebido    *decimal.Decimal   `json:"valor_recebido"`
}

// RegistrarVendaRequest links a sale to an order created by the delivery flow.
// Valor defaults to the order price.
type RegistrarVendaRequest struct {
	PedidoID         string          `json:"pedido_id"          validate:"required,uuid"`
	FormaPagamentoID string          `json:"forma_pagamento_id" validate:"required,uuid"`
	Valor            decimal.Decimal `json:"valor"              validate:"min=0"`
}

type AlterarStatusVendaRequest struct {
	Status string `json:"status" validate:"required"`
}

type CancelarVendaPDVRequest struct {
	CredenciaisOperador
	PDVID   string `json:"pdv_id"   validate:"required,uuid"`
	NrVenda string `json:"nr_venda" validate:"required,max=12"`
}

type CancelarUltimaVendaRequest struct {
	CredenciaisOperador
	PDVID string `json:"pdv_id" validate:"required,uuid"`
}

type ReimprimirCupomRequest struct {
	PDVID   string `json:"pdv_id"   validate:"required,uuid"`
	NrVenda string `json:"nr_venda" validate:"required,max=12"`
}

type ReimprimirUltimoCupomRequest struct {
	PDVID string `json:"pdv_id" validate:"required,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VendaResponse struct {
	ID               string          `json:"id"`
	NrVenda          string          `json:"nr_venda"`
	Valor            decimal.Decimal `json:"valor"`
	Status           string          `json:"status"`
	FormaPagamentoID string          `json:"forma_pagamento_id"`
	PDVID            *string         `json:"pdv_id"`
	OperadorID       *string         `json:"operador_id"`
	PedidoID         string          `json:"pedido_id"`
	Data             time.Time       `json:"data"`
}

type ItemCupomResponse struct {
	ProdutoID  string          `json:"produto_id"`
	Nome       string          `json:"nome"`
	Preco      decimal.Decimal `json:"preco"`
	Quantidade int             `json:"quantidade"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// CupomResponse is the printable view of a sale.
type CupomResponse struct {
	Venda           VendaResponse       `json:"venda"`
	Estabelecimento string              `json:"estabelecimento"`
	PDV             string              `json:"pdv"`
	Operador        string              `json:"operador"`
	FormaPagamento  string              `json:"forma_pagamento"`
	PedidoStatus    string              `json:"pedido_status"`
	Itens           []ItemCupomResponse `json:"itens"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	TaxaEntrega     decimal.Decimal     `json:"taxa_entrega"`
	Total           decimal.Decimal     `json:"total"`
	Troco           *decimal.Decimal    `json:"troco"`
}
