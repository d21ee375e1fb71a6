package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a restaurant account. LimitePDVs caps the number of active drawers.
type Tenant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	Nome       string    `gorm:"not null" json:"nome"`
	LimitePDVs int       `gorm:"column:limite_pdvs;not null;default:1" json:"limite_pdvs"`
	Ativo      bool      `gorm:"not null;default:true" json:"ativo"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
