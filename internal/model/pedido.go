package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PedidoPendente  = "PENDENTE"
	PedidoPago      = "PAGO"
	PedidoCancelado = "CANCELADO"
)

// Pedido is the order record owned by a Venda.
type Pedido struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status           string           `gorm:"type:varchar(20);not null"`
	Origem           string           `gorm:"type:varchar(80)"`
	FormaPagamentoID uuid.UUID        `gorm:"type:uuid;not null"`
	Subtotal         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	TaxaEntrega      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Preco            decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Troco            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Itens []PedidoItem `gorm:"foreignKey:PedidoID"`
}

// PedidoItem is a product line frozen at order time.
type PedidoItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProdutoID  string          `gorm:"type:varchar(64)"`
	Nome       string          `gorm:"not null"`
	Preco      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantidade int             `gorm:"not null"`
}

// Subtotal returns Preco * Quantidade.
func (i PedidoItem) Subtotal() decimal.Decimal {
	return i.Preco.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}

// FormaPagamento is read-only to this core; the catalog is maintained elsewhere.
type FormaPagamento struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Nome        string    `gorm:"not null"`
	Tipo        string    `gorm:"type:varchar(20);not null"`
	AceitaTroco bool      `gorm:"not null;default:false"`
	Ativo       bool      `gorm:"not null;default:true"`
}

func (FormaPagamento) TableName() string { return "formas_pagamento" }

// Sequencia is a per-tenant counter row locked FOR UPDATE while a number is issued.
type Sequencia struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nome     string    `gorm:"type:varchar(40);primaryKey"`
	Ultimo   int64     `gorm:"not null;default:0"`
}
