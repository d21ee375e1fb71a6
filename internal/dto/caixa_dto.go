package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	CredenciaisOperador
	PDVID        string          `json:"pdv_id"        validate:"required,uuid"`
	ValorInicial decimal.Decimal `json:"valor_inicial" validate:"min=0"`
}

// MovimentoCaixaRequest is used for both sangria and suprimento; the route decides the kind.
type MovimentoCaixaRequest struct {
	CredenciaisOperador
	PDVID  string          `json:"pdv_id" validate:"required,uuid"`
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	Motivo string          `json:"motivo" validate:"max=255"`
}

type FecharCaixaRequest struct {
	CredenciaisOperador
	PDVID      string  `json:"pdv_id"     validate:"required,uuid"`
	Observacao *string `json:"observacao" validate:"omitempty,max=500"`
}

type CaixaAtualRequest struct {
	CredenciaisOperador
	PDVID string `json:"pdv_id" validate:"required,uuid"`
}

// FecharSessaoRequest is the administrative close. FechadoEm backdates the
// close of a session left open on a prior day.
type FecharSessaoRequest struct {
	Observacao *string    `json:"observacao" validate:"omitempty,max=500"`
	FechadoEm  *time.Time `json:"fechado_em"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessaoResponse struct {
	ID           string           `json:"id"`
	PDVID        string           `json:"pdv_id"`
	OperadorID   string           `json:"operador_id"`
	ValorInicial decimal.Decimal  `json:"valor_inicial"`
	AbertoEm     time.Time        `json:"aberto_em"`
	FechadoEm    *time.Time       `json:"fechado_em"`
	ValorFinal   *decimal.Decimal `json:"valor_final"`
	Observacao   *string          `json:"observacao"`
}

type AberturaResponse struct {
	PDV    PDVResponse    `json:"pdv"`
	Sessao SessaoResponse `json:"sessao"`
}

type MovimentoResponse struct {
	ID         string          `json:"id"`
	Tipo       string          `json:"tipo"` // SANGRIA | SUPRIMENTO
	Valor      decimal.Decimal `json:"valor"`
	Motivo     string          `json:"motivo"`
	OperadorID string          `json:"operador_id"`
	Data       time.Time       `json:"data"`
}

type VendaResumo struct {
	ID      string          `json:"id"`
	NrVenda string          `json:"nr_venda"`
	Valor   decimal.Decimal `json:"valor"`
	Data    time.Time       `json:"data"`
}

// ResumoCaixaResponse is the reconciliation of one session. For an open
// session the figures run up to the time of the request.
type ResumoCaixaResponse struct {
	Estabelecimento  string              `json:"estabelecimento"`
	Sessao           SessaoResponse      `json:"sessao"`
	PDV              PDVResponse         `json:"pdv"`
	Operador         *OperadorResumo     `json:"operador"`
	Status           string              `json:"status"` // ABERTA | FECHADA
	ValorInicial     decimal.Decimal     `json:"valor_inicial"`
	TotalVendas      decimal.Decimal     `json:"total_vendas"`
	TotalSangrias    decimal.Decimal     `json:"total_sangrias"`
	TotalSuprimentos decimal.Decimal     `json:"total_suprimentos"`
	ValorFinal       decimal.Decimal     `json:"valor_final"`
	QtdVendas        int                 `json:"qtd_vendas"`
	QtdSangrias      int                 `json:"qtd_sangrias"`
	QtdSuprimentos   int                 `json:"qtd_suprimentos"`
	Vendas           []VendaResumo       `json:"vendas"`
	Sangrias         []MovimentoResponse `json:"sangrias"`
	Suprimentos      []MovimentoResponse `json:"suprimentos"`
}
