package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	PDVAberto  = "ABERTO"
	PDVFechado = "FECHADO"
)

// PDV is a physical drawer. OperadorID is non-nil only while Status is ABERTO,
// and an operator may be bound to at most one ABERTO drawer (partial unique index).
type PDV struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_pdv_nome"`
	Nome       string     `gorm:"type:varchar(80);not null;uniqueIndex:idx_pdv_nome"`
	Status     string     `gorm:"type:varchar(10);not null;default:'FECHADO'"`
	OperadorID *uuid.UUID `gorm:"type:uuid;index"`
	Ativo      bool       `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Operador *Operador `gorm:"foreignKey:OperadorID"`
}

func (PDV) TableName() string { return "pdvs" }

// VinculadoA reports whether the drawer is open and bound to operadorID.
func (p *PDV) VinculadoA(operadorID uuid.UUID) bool {
	return p.Status == PDVAberto && p.OperadorID != nil && *p.OperadorID == operadorID
}
