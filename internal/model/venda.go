package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	VendaPendente  = "PENDENTE"
	VendaAceito    = "ACEITO"
	VendaCancelado = "CANCELADO"
	VendaEstornado = "ESTORNADO"
)

// NormalizarStatusVenda maps accepted aliases onto the canonical status set.
// Returns false for unknown values.
func NormalizarStatusVenda(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case VendaPendente:
		return VendaPendente, true
	case VendaAceito, "APROVADA":
		return VendaAceito, true
	case VendaCancelado, "CANCELADA":
		return VendaCancelado, true
	case VendaEstornado, "ESTORNADA":
		return VendaEstornado, true
	}
	return "", false
}

// Venda is a sale. It exclusively owns one Pedido.
// Numero is unique per tenant; NrVenda is its 5-digit zero-padded form.
type Venda struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_venda_numero"`
	Numero           int64           `gorm:"not null;uniqueIndex:idx_venda_numero"`
	NrVenda          string          `gorm:"type:varchar(12);not null;index"`
	Valor            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status           string          `gorm:"type:varchar(12);not null;default:'PENDENTE'"`
	FormaPagamentoID uuid.UUID       `gorm:"type:uuid;not null"`
	PDVID            *uuid.UUID      `gorm:"column:pdv_id;type:uuid;index:idx_venda_pdv_data"`
	OperadorID       *uuid.UUID      `gorm:"type:uuid"`
	PedidoID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Data             time.Time       `gorm:"not null;index:idx_venda_pdv_data"`
	UpdatedAt        time.Time

	Pedido         *Pedido         `gorm:"foreignKey:PedidoID"`
	FormaPagamento *FormaPagamento `gorm:"foreignKey:FormaPagamentoID"`
	PDV            *PDV            `gorm:"foreignKey:PDVID"`
	Operador       *Operador       `gorm:"foreignKey:OperadorID"`
}

// FormatarNrVenda renders a sale number the way it is printed on receipts.
func FormatarNrVenda(numero int64) string {
	return fmt.Sprintf("%05d", numero)
}
