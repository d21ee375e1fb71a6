package service_test

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"deliverypdv/internal/infra"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"
	"deliverypdv/internal/repository/memstore"
	"deliverypdv/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// relogioFake advances one second on every read so that consecutive events
// never share a timestamp.
type relogioFake struct {
	mu sync.Mutex
	t  time.Time
}

func (c *relogioFake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *relogioFake) Avancar(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type jobsFake struct {
	mu          sync.Mutex
	cupons      []uuid.UUID
	fechamentos []uuid.UUID
}

func (j *jobsFake) EnqueueCupom(_ context.Context, _, vendaID uuid.UUID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cupons = append(j.cupons, vendaID)
	return nil
}

func (j *jobsFake) EnqueueFechamento(_ context.Context, _, sessaoID uuid.UUID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fechamentos = append(j.fechamentos, sessaoID)
	return nil
}

type fixture struct {
	ctx     context.Context
	store   repository.Store
	relogio *relogioFake
	rel     service.Relogio
	jobs    *jobsFake
	tenant  *model.Tenant
	forma   *model.FormaPagamento

	caixa    service.CaixaService
	vendas   service.VendaService
	pdvs     service.PDVService
	cupons   service.CupomService
	operador service.OperadorService
}

func novoFixture(t *testing.T) *fixture {
	t.Helper()
	return novoFixtureCom(t, memstore.New())
}

func novoFixtureCom(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	f := &fixture{
		ctx:     context.Background(),
		store:   store,
		relogio: &relogioFake{t: time.Date(2024, 3, 10, 9, 0, 0, 0, loc)},
		jobs:    &jobsFake{},
	}
	f.rel = service.Relogio{Loc: loc, Now: f.relogio.Now}
	f.comLocker(infra.NewLocalLocker())
	f.vendas = service.NewVendaService(store, f.jobs, f.rel)
	f.cupons = service.NewCupomService(store)
	f.operador = service.NewOperadorService(store)

	f.tenant = &model.Tenant{Slug: "pizzaria-" + uuid.NewString()[:8], Nome: "Pizzaria Bella", LimitePDVs: 5, Ativo: true}
	require.NoError(t, store.Tenants().Create(f.ctx, f.tenant))
	f.forma = &model.FormaPagamento{TenantID: f.tenant.ID, Nome: "Dinheiro", Tipo: "DINHEIRO", AceitaTroco: true, Ativo: true}
	require.NoError(t, store.FormasPagamento().Create(f.ctx, f.forma))
	return f
}

// comLocker rebuilds the services that serialize through a Locker.
func (f *fixture) comLocker(l service.Locker) {
	f.caixa = service.NewCaixaService(f.store, l, f.jobs, f.rel)
	f.pdvs = service.NewPDVService(f.store, l, f.rel)
}

func (f *fixture) novoOperador(t *testing.T, codigo string) service.OperadorContext {
	t.Helper()
	op := &model.Operador{
		TenantID: f.tenant.ID,
		Nome:     "Operador " + codigo,
		Codigo:   codigo,
		Segredo:  "1234",
		Ativo:    true,
		Papeis:   "operador",
	}
	require.NoError(t, f.store.Operadores().Create(f.ctx, op))
	return service.OperadorContext{
		TenantID:   f.tenant.ID,
		OperadorID: op.ID,
		Codigo:     op.Codigo,
		Nome:       op.Nome,
		Papeis:     op.ListaPapeis(),
	}
}

func (f *fixture) novoPDV(t *testing.T, nome string) uuid.UUID {
	t.Helper()
	pdv := &model.PDV{TenantID: f.tenant.ID, Nome: nome, Status: model.PDVFechado, Ativo: true}
	require.NoError(t, f.store.PDVs().Create(f.ctx, pdv))
	return pdv.ID
}

func (f *fixture) abrir(t *testing.T, op service.OperadorContext, pdvID uuid.UUID, valor string) {
	t.Helper()
	_, err := f.caixa.Abrir(f.ctx, op, pdvID, dec(valor))
	require.NoError(t, err)
}

// sessoesAbertas returns every open session in the store.
func (f *fixture) sessoesAbertas(t *testing.T) []model.SessaoCaixa {
	t.Helper()
	out, err := f.store.Sessoes().ListAbertasAntesDe(f.ctx, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), 1000)
	require.NoError(t, err)
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
