package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store is the single storage handle injected into services.
// Tx runs fn against a transactional Store; any error returned by fn rolls
// back every write made through it.
type Store interface {
	Tenants() TenantRepository
	Operadores() OperadorRepository
	PDVs() PDVRepository
	Sessoes() SessaoRepository
	Movimentos() MovimentoRepository
	Vendas() VendaRepository
	Pedidos() PedidoRepository
	FormasPagamento() FormaPagamentoRepository
	Sequencias() SequenciaRepository
	Tx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct{ db *gorm.DB }

// NewStore returns a Store backed by PostgreSQL through GORM.
func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) Tenants() TenantRepository                 { return &tenantRepo{db: s.db} }
func (s *gormStore) Operadores() OperadorRepository            { return &operadorRepo{db: s.db} }
func (s *gormStore) PDVs() PDVRepository                       { return &pdvRepo{db: s.db} }
func (s *gormStore) Sessoes() SessaoRepository                 { return &sessaoRepo{db: s.db} }
func (s *gormStore) Movimentos() MovimentoRepository           { return &movimentoRepo{db: s.db} }
func (s *gormStore) Vendas() VendaRepository                   { return &vendaRepo{db: s.db} }
func (s *gormStore) Pedidos() PedidoRepository                 { return &pedidoRepo{db: s.db} }
func (s *gormStore) FormasPagamento() FormaPagamentoRepository { return &formaPagamentoRepo{db: s.db} }
func (s *gormStore) Sequencias() SequenciaRepository           { return &sequenciaRepo{db: s.db} }

func (s *gormStore) Tx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
