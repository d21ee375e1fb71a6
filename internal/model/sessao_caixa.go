package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessaoCaixa is one open→close cycle of a drawer.
// At most one session per drawer has a nil FechadoEm (partial unique index).
// The totals are a snapshot written when the session is closed.
type SessaoCaixa struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PDVID        uuid.UUID       `gorm:"column:pdv_id;type:uuid;not null;index"`
	OperadorID   uuid.UUID       `gorm:"type:uuid;not null"`
	ValorInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AbertoEm     time.Time       `gorm:"not null"`
	FechadoEm    *time.Time
	ValorFinal   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observacao   *string
	FechadoPor   *uuid.UUID `gorm:"type:uuid"`

	TotalVendas      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalSangrias    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalSuprimentos *decimal.Decimal `gorm:"type:decimal(12,2)"`
	QtdVendas        int              `gorm:"not null;default:0"`
	QtdSangrias      int              `gorm:"not null;default:0"`
	QtdSuprimentos   int              `gorm:"not null;default:0"`
}

func (SessaoCaixa) TableName() string { return "sessoes_caixa" }

// Aberta reports whether the session has not been closed yet.
func (s *SessaoCaixa) Aberta() bool { return s.FechadoEm == nil }

const (
	MovimentoSangria    = "SANGRIA"
	MovimentoSuprimento = "SUPRIMENTO"
)

// MovimentoCaixa is an immutable withdrawal or deposit on a drawer.
// It belongs to a session only by time range, never by foreign key.
type MovimentoCaixa struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null"`
	PDVID      uuid.UUID       `gorm:"column:pdv_id;type:uuid;not null;index:idx_movimento_pdv_data"`
	OperadorID uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo       string          `gorm:"type:varchar(12);not null"`
	Valor      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo     string
	Data       time.Time `gorm:"not null;index:idx_movimento_pdv_data"`
}

func (MovimentoCaixa) TableName() string { return "movimentos_caixa" }
