package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Operador is a tenant membership carrying a till credential.
// Segredo holds a bcrypt/argon2id hash or, for legacy rows, the plaintext secret.
// Operators are deactivated, never deleted.
type Operador struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_operador_codigo"`
	UserID   *uuid.UUID `gorm:"type:uuid"`
	Nome     string     `gorm:"not null"`
	// Codigo is the operator id typed at the till, unique per tenant.
	Codigo  string `gorm:"type:varchar(40);not null;uniqueIndex:idx_operador_codigo"`
	Segredo string `gorm:"not null"`
	Ativo   bool   `gorm:"not null;default:true"`
	// Papeis is a comma separated role set: "operador", "gerente", "admin".
	Papeis    string `gorm:"type:varchar(120);not null;default:'operador'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Operador) TableName() string { return "operadores" }

// ListaPapeis splits the stored role set.
func (o *Operador) ListaPapeis() []string {
	if o.Papeis == "" {
		return nil
	}
	parts := strings.Split(o.Papeis, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
