// Package memstore is an in-process repository.Store. Every operation runs
// under one mutex and Tx restores a snapshot when fn fails, so transactions
// are atomic and serializable. Used for local development and tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	tenants    map[uuid.UUID]model.Tenant
	operadores map[uuid.UUID]model.Operador
	pdvs       map[uuid.UUID]model.PDV
	sessoes    map[uuid.UUID]model.SessaoCaixa
	movimentos []model.MovimentoCaixa
	vendas     map[uuid.UUID]model.Venda
	pedidos    map[uuid.UUID]model.Pedido
	formas     map[uuid.UUID]model.FormaPagamento
	sequencias map[uuid.UUID]int64
}

func newState() *state {
	return &state{
		tenants:    map[uuid.UUID]model.Tenant{},
		operadores: map[uuid.UUID]model.Operador{},
		pdvs:       map[uuid.UUID]model.PDV{},
		sessoes:    map[uuid.UUID]model.SessaoCaixa{},
		vendas:     map[uuid.UUID]model.Venda{},
		pedidos:    map[uuid.UUID]model.Pedido{},
		formas:     map[uuid.UUID]model.FormaPagamento{},
		sequencias: map[uuid.UUID]int64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.tenants {
		c.tenants[k] = v
	}
	for k, v := range s.operadores {
		c.operadores[k] = v
	}
	for k, v := range s.pdvs {
		c.pdvs[k] = v
	}
	for k, v := range s.sessoes {
		c.sessoes[k] = v
	}
	c.movimentos = append([]model.MovimentoCaixa(nil), s.movimentos...)
	for k, v := range s.vendas {
		c.vendas[k] = v
	}
	for k, v := range s.pedidos {
		v.Itens = append([]model.PedidoItem(nil), v.Itens...)
		c.pedidos[k] = v
	}
	for k, v := range s.formas {
		c.formas[k] = v
	}
	for k, v := range s.sequencias {
		c.sequencias[k] = v
	}
	return c
}

// Store implements repository.Store in memory.
type Store struct {
	mu   *sync.Mutex
	data **state
	inTx bool
}

// New returns an empty in-memory store.
func New() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, data: &st}
}

var _ repository.Store = (*Store)(nil)

// guard takes the store mutex unless the caller already holds it inside Tx.
func (s *Store) guard() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) st() *state { return *s.data }

func (s *Store) Tx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st().clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) Tenants() repository.TenantRepository                 { return tenants{s} }
func (s *Store) Operadores() repository.OperadorRepository            { return operadores{s} }
func (s *Store) PDVs() repository.PDVRepository                       { return pdvs{s} }
func (s *Store) Sessoes() repository.SessaoRepository                 { return sessoes{s} }
func (s *Store) Movimentos() repository.MovimentoRepository           { return movimentos{s} }
func (s *Store) Vendas() repository.VendaRepository                   { return vendas{s} }
func (s *Store) Pedidos() repository.PedidoRepository                 { return pedidos{s} }
func (s *Store) FormasPagamento() repository.FormaPagamentoRepository { return formas{s} }
func (s *Store) Sequencias() repository.SequenciaRepository           { return sequencias{s} }

// ── Tenants ──────────────────────────────────────────────────────────────────

type tenants struct{ s *Store }

func (r tenants) Create(_ context.Context, t *model.Tenant) error {
	defer r.s.guard()()
	for _, o := range r.s.st().tenants {
		if o.Slug == t.Slug {
			return repository.ErrConflict
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.s.st().tenants[t.ID] = *t
	return nil
}

func (r tenants) FindByID(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	defer r.s.guard()()
	t, ok := r.s.st().tenants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r tenants) FindBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	defer r.s.guard()()
	for _, t := range r.s.st().tenants {
		if t.Slug == slug && t.Ativo {
			t := t
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ── Operadores ───────────────────────────────────────────────────────────────

type operadores struct{ s *Store }

func (r operadores) Create(_ context.Context, o *model.Operador) error {
	defer r.s.guard()()
	for _, x := range r.s.st().operadores {
		if x.TenantID == o.TenantID && x.Codigo == o.Codigo {
			return repository.ErrConflict
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.s.st().operadores[o.ID] = *o
	return nil
}

func (r operadores) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Operador, error) {
	defer r.s.guard()()
	o, ok := r.s.st().operadores[id]
	if !ok || o.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r operadores) FindAtivoByCodigo(_ context.Context, tenantID uuid.UUID, codigo string) (*model.Operador, error) {
	defer r.s.guard()()
	for _, o := range r.s.st().operadores {
		if o.TenantID == tenantID && o.Codigo == codigo && o.Ativo {
			o := o
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r operadores) List(_ context.Context, tenantID uuid.UUID) ([]model.Operador, error) {
	defer r.s.guard()()
	var out []model.Operador
	for _, o := range r.s.st().operadores {
		if o.TenantID == tenantID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (r operadores) UpdateSegredo(_ context.Context, id uuid.UUID, segredo string) error {
	defer r.s.guard()()
	o, ok := r.s.st().operadores[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Segredo = segredo
	r.s.st().operadores[id] = o
	return nil
}

func (r operadores) Desativar(_ context.Context, tenantID, id uuid.UUID) error {
	defer r.s.guard()()
	o, ok := r.s.st().operadores[id]
	if !ok || o.TenantID != tenantID {
		return repository.ErrNotFound
	}
	o.Ativo = false
	r.s.st().operadores[id] = o
	return nil
}

// ── PDVs ─────────────────────────────────────────────────────────────────────

type pdvs struct{ s *Store }

func (r pdvs) withOperador(p model.PDV) *model.PDV {
	p.Operador = nil
	if p.OperadorID != nil {
		if o, ok := r.s.st().operadores[*p.OperadorID]; ok {
			p.Operador = &o
		}
	}
	return &p
}

func (r pdvs) Create(_ context.Context, p *model.PDV) error {
	defer r.s.guard()()
	for _, x := range r.s.st().pdvs {
		if x.TenantID == p.TenantID && x.Nome == p.Nome {
			return repository.ErrConflict
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	stored.Operador = nil
	r.s.st().pdvs[p.ID] = stored
	return nil
}

func (r pdvs) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.PDV, error) {
	defer r.s.guard()()
	p, ok := r.s.st().pdvs[id]
	if !ok || p.TenantID != tenantID || !p.Ativo {
		return nil, repository.ErrNotFound
	}
	return r.withOperador(p), nil
}

func (r pdvs) FindByNome(_ context.Context, tenantID uuid.UUID, nome string) (*model.PDV, error) {
	defer r.s.guard()()
	for _, p := range r.s.st().pdvs {
		if p.TenantID == tenantID && p.Nome == nome {
			return r.withOperador(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r pdvs) CountAtivos(_ context.Context, tenantID uuid.UUID) (int64, error) {
	defer r.s.guard()()
	var n int64
	for _, p := range r.s.st().pdvs {
		if p.TenantID == tenantID && p.Ativo {
			n++
		}
	}
	return n, nil
}

func (r pdvs) List(_ context.Context, tenantID uuid.UUID) ([]model.PDV, error) {
	defer r.s.guard()()
	var out []model.PDV
	for _, p := range r.s.st().pdvs {
		if p.TenantID == tenantID && p.Ativo {
			out = append(out, *r.withOperador(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (r pdvs) operadorEmOutro(operadorID, pdvID uuid.UUID) bool {
	for _, p := range r.s.st().pdvs {
		if p.ID != pdvID && p.Status == model.PDVAberto && p.OperadorID != nil && *p.OperadorID == operadorID {
			return true
		}
	}
	return false
}

func (r pdvs) Vincular(_ context.Context, pdvID, operadorID uuid.UUID) error {
	defer r.s.guard()()
	if r.operadorEmOutro(operadorID, pdvID) {
		return repository.ErrOperadorVinculado
	}
	p, ok := r.s.st().pdvs[pdvID]
	if !ok || p.Status != model.PDVFechado {
		return repository.ErrStaleState
	}
	op := operadorID
	p.Status = model.PDVAberto
	p.OperadorID = &op
	r.s.st().pdvs[pdvID] = p
	return nil
}

func (r pdvs) Transferir(_ context.Context, pdvID, de, para uuid.UUID) error {
	defer r.s.guard()()
	if r.operadorEmOutro(para, pdvID) {
		return repository.ErrOperadorVinculado
	}
	p, ok := r.s.st().pdvs[pdvID]
	if !ok || p.Status != model.PDVAberto || p.OperadorID == nil || *p.OperadorID != de {
		return repository.ErrStaleState
	}
	op := para
	p.OperadorID = &op
	r.s.st().pdvs[pdvID] = p
	return nil
}

func (r pdvs) Liberar(_ context.Context, pdvID uuid.UUID) error {
	defer r.s.guard()()
	p, ok := r.s.st().pdvs[pdvID]
	if !ok || p.Status != model.PDVAberto {
		return repository.ErrStaleState
	}
	p.Status = model.PDVFechado
	p.OperadorID = nil
	r.s.st().pdvs[pdvID] = p
	return nil
}

// ── Sessoes ──────────────────────────────────────────────────────────────────

type sessoes struct{ s *Store }

func (r sessoes) Create(_ context.Context, s *model.SessaoCaixa) error {
	defer r.s.guard()()
	for _, x := range r.s.st().sessoes {
		if x.PDVID == s.PDVID && x.FechadoEm == nil {
			return repository.ErrConflict
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.s.st().sessoes[s.ID] = *s
	return nil
}

func (r sessoes) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.SessaoCaixa, error) {
	defer r.s.guard()()
	s, ok := r.s.st().sessoes[id]
	if !ok || s.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r sessoes) FindAbertaPorPDV(_ context.Context, pdvID uuid.UUID) (*model.SessaoCaixa, error) {
	defer r.s.guard()()
	for _, s := range r.s.st().sessoes {
		if s.PDVID == pdvID && s.FechadoEm == nil {
			s := s
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r sessoes) ListAbertasAntesDe(_ context.Context, t time.Time, limit int) ([]model.SessaoCaixa, error) {
	defer r.s.guard()()
	var out []model.SessaoCaixa
	for _, s := range r.s.st().sessoes {
		if s.FechadoEm == nil && s.AbertoEm.Before(t) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AbertoEm.Before(out[j].AbertoEm) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r sessoes) Fechar(_ context.Context, s *model.SessaoCaixa) error {
	defer r.s.guard()()
	cur, ok := r.s.st().sessoes[s.ID]
	if !ok || cur.FechadoEm != nil {
		return repository.ErrStaleState
	}
	r.s.st().sessoes[s.ID] = *s
	return nil
}

// ── Movimentos ───────────────────────────────────────────────────────────────

type movimentos struct{ s *Store }

func (r movimentos) Create(_ context.Context, m *model.MovimentoCaixa) error {
	defer r.s.guard()()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.s.st().movimentos = append(r.s.st().movimentos, *m)
	return nil
}

func (r movimentos) ListPorPeriodo(_ context.Context, pdvID uuid.UUID, de, ate time.Time) ([]model.MovimentoCaixa, error) {
	defer r.s.guard()()
	var out []model.MovimentoCaixa
	for _, m := range r.s.st().movimentos {
		if m.PDVID == pdvID && !m.Data.Before(de) && m.Data.Before(ate) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Data.Before(out[j].Data) })
	return out, nil
}

// ── Vendas ───────────────────────────────────────────────────────────────────

type vendas struct{ s *Store }

func (r vendas) hydrate(v model.Venda) *model.Venda {
	st := r.s.st()
	if p, ok := st.pedidos[v.PedidoID]; ok {
		p.Itens = append([]model.PedidoItem(nil), p.Itens...)
		v.Pedido = &p
	}
	if f, ok := st.formas[v.FormaPagamentoID]; ok {
		v.FormaPagamento = &f
	}
	if v.PDVID != nil {
		if p, ok := st.pdvs[*v.PDVID]; ok {
			v.PDV = &p
		}
	}
	if v.OperadorID != nil {
		if o, ok := st.operadores[*v.OperadorID]; ok {
			v.Operador = &o
		}
	}
	return &v
}

func (r vendas) Create(_ context.Context, v *model.Venda) error {
	defer r.s.guard()()
	for _, x := range r.s.st().vendas {
		if (x.TenantID == v.TenantID && x.Numero == v.Numero) || x.PedidoID == v.PedidoID {
			return repository.ErrConflict
		}
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	stored := *v
	stored.Pedido, stored.FormaPagamento, stored.PDV, stored.Operador = nil, nil, nil, nil
	r.s.st().vendas[v.ID] = stored
	return nil
}

func (r vendas) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Venda, error) {
	defer r.s.guard()()
	v, ok := r.s.st().vendas[id]
	if !ok || v.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return r.hydrate(v), nil
}

func (r vendas) FindByNumero(_ context.Context, tenantID, pdvID uuid.UUID, nrVenda string) (*model.Venda, error) {
	defer r.s.guard()()
	for _, v := range r.s.st().vendas {
		if v.TenantID == tenantID && v.PDVID != nil && *v.PDVID == pdvID && v.NrVenda == nrVenda {
			return r.hydrate(v), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r vendas) FindByPedido(_ context.Context, pedidoID uuid.UUID) (*model.Venda, error) {
	defer r.s.guard()()
	for _, v := range r.s.st().vendas {
		if v.PedidoID == pedidoID {
			v := v
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r vendas) FindUltima(_ context.Context, tenantID, pdvID uuid.UUID, status string) (*model.Venda, error) {
	defer r.s.guard()()
	var best *model.Venda
	for _, v := range r.s.st().vendas {
		if v.TenantID != tenantID || v.PDVID == nil || *v.PDVID != pdvID {
			continue
		}
		if status != "" && v.Status != status {
			continue
		}
		if best == nil || v.Data.After(best.Data) || (v.Data.Equal(best.Data) && v.Numero > best.Numero) {
			v := v
			best = &v
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return r.hydrate(*best), nil
}

func (r vendas) ListAceitasPorPeriodo(_ context.Context, pdvID uuid.UUID, de, ate time.Time) ([]model.Venda, error) {
	defer r.s.guard()()
	var out []model.Venda
	for _, v := range r.s.st().vendas {
		if v.PDVID != nil && *v.PDVID == pdvID && v.Status == model.VendaAceito &&
			!v.Data.Before(de) && v.Data.Before(ate) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Data.Before(out[j].Data) })
	return out, nil
}

func (r vendas) UpdateStatus(_ context.Context, id uuid.UUID, de, para string) error {
	defer r.s.guard()()
	v, ok := r.s.st().vendas[id]
	if !ok || v.Status != de {
		return repository.ErrStaleState
	}
	v.Status = para
	r.s.st().vendas[id] = v
	return nil
}

func (r vendas) maxNumero(tenantID uuid.UUID) int64 {
	var max int64
	for _, v := range r.s.st().vendas {
		if v.TenantID == tenantID && v.Numero > max {
			max = v.Numero
		}
	}
	return max
}

// ── Pedidos / Formas de pagamento ────────────────────────────────────────────

type pedidos struct{ s *Store }

func (r pedidos) Create(_ context.Context, p *model.Pedido) error {
	defer r.s.guard()()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Itens {
		if p.Itens[i].ID == uuid.Nil {
			p.Itens[i].ID = uuid.New()
		}
		p.Itens[i].PedidoID = p.ID
	}
	stored := *p
	stored.Itens = append([]model.PedidoItem(nil), p.Itens...)
	r.s.st().pedidos[p.ID] = stored
	return nil
}

func (r pedidos) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Pedido, error) {
	defer r.s.guard()()
	p, ok := r.s.st().pedidos[id]
	if !ok || p.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	p.Itens = append([]model.PedidoItem(nil), p.Itens...)
	return &p, nil
}

func (r pedidos) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	defer r.s.guard()()
	p, ok := r.s.st().pedidos[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	r.s.st().pedidos[id] = p
	return nil
}

type formas struct{ s *Store }

func (r formas) Create(_ context.Context, f *model.FormaPagamento) error {
	defer r.s.guard()()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.s.st().formas[f.ID] = *f
	return nil
}

func (r formas) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.FormaPagamento, error) {
	defer r.s.guard()()
	f, ok := r.s.st().formas[id]
	if !ok || f.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

// ── Sequencias ───────────────────────────────────────────────────────────────

type sequencias struct{ s *Store }

func (r sequencias) NextVenda(_ context.Context, tenantID uuid.UUID) (int64, error) {
	defer r.s.guard()()
	st := r.s.st()
	ultimo, ok := st.sequencias[tenantID]
	if !ok {
		ultimo = vendas{r.s}.maxNumero(tenantID)
	}
	ultimo++
	st.sequencias[tenantID] = ultimo
	return ultimo, nil
}
