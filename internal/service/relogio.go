package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Relogio is the business clock. "Same day" is decided in Loc, the tenant
// timezone, never in UTC.
type Relogio struct {
	Loc *time.Location
	Now func() time.Time
}

func NewRelogio(loc *time.Location) Relogio {
	if loc == nil {
		loc = time.UTC
	}
	return Relogio{Loc: loc, Now: time.Now}
}

func (r Relogio) Agora() time.Time {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	loc := r.Loc
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// MesmoDia reports whether a and b fall on the same calendar day in Loc.
func (r Relogio) MesmoDia(a, b time.Time) bool {
	loc := r.Loc
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Locker serializes work on a key across processes. The returned func
// releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Jobs enqueues post-commit background work. Failures never undo a commit.
type Jobs interface {
	EnqueueCupom(ctx context.Context, tenantID, vendaID uuid.UUID) error
	EnqueueFechamento(ctx context.Context, tenantID, sessaoID uuid.UUID) error
}

// OperadorContext is an authenticated operator acting on a tenant.
type OperadorContext struct {
	TenantID   uuid.UUID
	OperadorID uuid.UUID
	Codigo     string
	Nome       string
	Papeis     []string
}
