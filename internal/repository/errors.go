package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("conflito de unicidade")
	// ErrOperadorVinculado is returned when an operator is already bound to another open drawer.
	ErrOperadorVinculado = errors.New("operador já vinculado a outro PDV")
	// ErrStaleState is returned when a conditional update matched no row because
	// the record left the expected state.
	ErrStaleState = errors.New("estado alterado concorrentemente")
)

// translate maps GORM errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
