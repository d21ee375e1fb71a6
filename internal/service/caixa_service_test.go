package service_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"
	"deliverypdv/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbrirCaixa(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")

	resp, err := f.caixa.Abrir(f.ctx, op, pdvID, dec("100.00"))
	require.NoError(t, err)
	assert.Equal(t, model.PDVAberto, resp.PDV.Status)
	require.NotNil(t, resp.PDV.Operador)
	assert.Equal(t, op.OperadorID.String(), resp.PDV.Operador.ID)
	assert.Equal(t, "100", resp.Sessao.ValorInicial.String())
	assert.Nil(t, resp.Sessao.FechadoEm)
}

func TestAbrirCaixa_ValorInicialNegativo(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")

	_, err := f.caixa.Abrir(f.ctx, op, pdvID, dec("-1"))
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestCaixa_ValoresComMaisDeDuasCasas(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")

	_, err := f.caixa.Abrir(f.ctx, op, pdvID, dec("100.004"))
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.Empty(t, f.sessoesAbertas(t))

	f.abrir(t, op, pdvID, "100.00")
	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSangria, dec("0.001"), "")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSuprimento, dec("10.005"), "")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	resumo, err := f.caixa.Fechar(f.ctx, op, pdvID, nil)
	require.NoError(t, err)
	assert.Equal(t, "100.00", resumo.ValorFinal.StringFixed(2))
	assert.Equal(t, 0, resumo.QtdSangrias+resumo.QtdSuprimentos)
}

// F=100.00, vendas 45.50 e 12.25, sangria 20.00, suprimento 5.00.
func TestFechar_ConciliacaoDeReferencia(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, op, pdvID, "100.00")

	for _, preco := range []string{"45.50", "12.25"} {
		_, err := f.vendas.RegistrarPDV(f.ctx, op, vendaPDV(pdvID, f.forma.ID, preco, 1, "0"))
		require.NoError(t, err)
	}
	_, err := f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSangria, dec("20.00"), "")
	require.NoError(t, err)
	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSuprimento, dec("5.00"), "")
	require.NoError(t, err)

	resumo, err := f.caixa.Fechar(f.ctx, op, pdvID, nil)
	require.NoError(t, err)
	assert.Equal(t, "142.75", resumo.ValorFinal.StringFixed(2))
	assert.Equal(t, "57.75", resumo.TotalVendas.StringFixed(2))
	assert.Equal(t, "20.00", resumo.TotalSangrias.StringFixed(2))
	assert.Equal(t, "5.00", resumo.TotalSuprimentos.StringFixed(2))
	assert.Equal(t, 2, resumo.QtdVendas)
}

func TestAbrirCaixa_PDVInexistente(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")

	_, err := f.caixa.Abrir(f.ctx, op, uuid.New(), dec("0"))
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestAbrirCaixa_JaAbertoHoje(t *testing.T) {
	f := novoFixture(t)
	ana := f.novoOperador(t, "ana")
	bia := f.novoOperador(t, "bia")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, ana, pdvID, "100")

	_, err := f.caixa.Abrir(f.ctx, bia, pdvID, dec("50"))
	assert.True(t, apierror.HasCode(err, apierror.CodeAlreadyOpenToday))
	assert.Len(t, f.sessoesAbertas(t), 1)
}

func TestAbrirCaixa_PendenteDeDiaAnterior(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, op, pdvID, "100")

	f.relogio.Avancar(24 * time.Hour)

	_, err := f.caixa.Abrir(f.ctx, op, pdvID, dec("100"))
	assert.True(t, apierror.HasCode(err, apierror.CodePendingClosureFromPriorDay))

	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSangria, dec("10"), "")
	assert.True(t, apierror.HasCode(err, apierror.CodePendingClosureFromPriorDay))

	_, err = f.caixa.Atual(f.ctx, op, pdvID)
	assert.True(t, apierror.HasCode(err, apierror.CodePendingClosureFromPriorDay))

	_, err = f.caixa.Fechar(f.ctx, op, pdvID, nil)
	assert.True(t, apierror.HasCode(err, apierror.CodePendingClosureFromPriorDay))

	abertas := f.sessoesAbertas(t)
	require.Len(t, abertas, 1)
	pdv, err := f.store.PDVs().FindByID(f.ctx, f.tenant.ID, pdvID)
	require.NoError(t, err)
	assert.True(t, pdv.VinculadoA(op.OperadorID))
}

func TestAbrirCaixa_OperadorJaVinculado(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdv1 := f.novoPDV(t, "Caixa 1")
	pdv2 := f.novoPDV(t, "Caixa 2")
	f.abrir(t, op, pdv1, "100")

	_, err := f.caixa.Abrir(f.ctx, op, pdv2, dec("100"))
	assert.True(t, apierror.HasCode(err, apierror.CodeOperatorAlreadyBound))

	pdv, err := f.store.PDVs().FindByID(f.ctx, f.tenant.ID, pdv2)
	require.NoError(t, err)
	assert.Equal(t, model.PDVFechado, pdv.Status)
	assert.Len(t, f.sessoesAbertas(t), 1)
}

func TestAbrirCaixa_ConcorrenteMesmoOperador(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvs := make([]uuid.UUID, 8)
	for i := range pdvs {
		pdvs[i] = f.novoPDV(t, "Caixa "+string(rune('A'+i)))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sucesso := 0
	for _, id := range pdvs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := f.caixa.Abrir(f.ctx, op, id, dec("10")); err == nil {
				mu.Lock()
				sucesso++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, sucesso)
	assert.Len(t, f.sessoesAbertas(t), 1)
}

func TestRegistrarMovimento_SemCaixaAberto(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")

	_, err := f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSuprimento, dec("10"), "troco")
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestRegistrarMovimento_OperadorNaoVinculado(t *testing.T) {
	f := novoFixture(t)
	ana := f.novoOperador(t, "ana")
	bia := f.novoOperador(t, "bia")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, ana, pdvID, "100")

	_, err := f.caixa.RegistrarMovimento(f.ctx, bia, pdvID, model.MovimentoSangria, dec("10"), "")
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestRegistrarMovimento_ValorInvalido(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, op, pdvID, "100")

	_, err := f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSangria, dec("0"), "")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, "ESTORNO", dec("5"), "")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

// Opening 100.00, one sale of 50.25, a 20.00 withdrawal and a 12.50 deposit
// close at 142.75.
func TestFecharCaixa_ValorFinal(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, op, pdvID, "100.00")

	_, err := f.vendas.RegistrarPDV(f.ctx, op, vendaPDV(pdvID, f.forma.ID, "20.00", 2, "10.25"))
	require.NoError(t, err)
	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSangria, dec("20.00"), "cofre")
	require.NoError(t, err)
	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSuprimento, dec("12.50"), "troco")
	require.NoError(t, err)

	atual, err := f.caixa.Atual(f.ctx, op, pdvID)
	require.NoError(t, err)
	assert.Equal(t, "ABERTA", atual.Status)
	assert.Equal(t, "142.75", atual.ValorFinal.StringFixed(2))

	obs := "sem diferenças"
	resumo, err := f.caixa.Fechar(f.ctx, op, pdvID, &obs)
	require.NoError(t, err)
	assert.Equal(t, "FECHADA", resumo.Status)
	assert.Equal(t, "142.75", resumo.ValorFinal.StringFixed(2))
	assert.Equal(t, "50.25", resumo.TotalVendas.StringFixed(2))
	assert.Equal(t, "20.00", resumo.TotalSangrias.StringFixed(2))
	assert.Equal(t, "12.50", resumo.TotalSuprimentos.StringFixed(2))
	assert.Equal(t, 1, resumo.QtdVendas)
	assert.Equal(t, 1, resumo.QtdSangrias)
	assert.Equal(t, 1, resumo.QtdSuprimentos)
	assert.Equal(t, "Pizzaria Bella", resumo.Estabelecimento)
	require.NotNil(t, resumo.Sessao.FechadoEm)
	assert.Equal(t, model.PDVFechado, resumo.PDV.Status)
	assert.Nil(t, resumo.PDV.Operador)

	assert.Empty(t, f.sessoesAbertas(t))
	require.Len(t, f.jobs.fechamentos, 1)

	pdv, err := f.store.PDVs().FindByID(f.ctx, f.tenant.ID, pdvID)
	require.NoError(t, err)
	assert.Equal(t, model.PDVFechado, pdv.Status)
	assert.Nil(t, pdv.OperadorID)
}

func TestFecharCaixa_VendaCanceladaNaoEntraNoTotal(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, op, pdvID, "0")

	_, err := f.vendas.RegistrarPDV(f.ctx, op, vendaPDV(pdvID, f.forma.ID, "30.00", 1, "0"))
	require.NoError(t, err)
	_, err = f.vendas.RegistrarPDV(f.ctx, op, vendaPDV(pdvID, f.forma.ID, "15.00", 1, "0"))
	require.NoError(t, err)
	_, err = f.vendas.CancelarUltima(f.ctx, op, pdvID)
	require.NoError(t, err)

	resumo, err := f.caixa.Fechar(f.ctx, op, pdvID, nil)
	require.NoError(t, err)
	assert.Equal(t, "30.00", resumo.TotalVendas.StringFixed(2))
	assert.Equal(t, 1, resumo.QtdVendas)
}

func TestFecharCaixa_SessaoAnteriorNaoEntraNoTotal(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")

	f.abrir(t, op, pdvID, "0")
	_, err := f.vendas.RegistrarPDV(f.ctx, op, vendaPDV(pdvID, f.forma.ID, "99.00", 1, "0"))
	require.NoError(t, err)
	_, err = f.caixa.Fechar(f.ctx, op, pdvID, nil)
	require.NoError(t, err)

	f.abrir(t, op, pdvID, "10")
	resumo, err := f.caixa.Fechar(f.ctx, op, pdvID, nil)
	require.NoError(t, err)
	assert.True(t, resumo.TotalVendas.IsZero())
	assert.Equal(t, "10.00", resumo.ValorFinal.StringFixed(2))
}

func TestFecharSessao_AdminRetroativo(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	abertura, err := f.caixa.Abrir(f.ctx, op, pdvID, dec("50"))
	require.NoError(t, err)
	_, err = f.caixa.RegistrarMovimento(f.ctx, op, pdvID, model.MovimentoSuprimento, dec("5"), "")
	require.NoError(t, err)

	f.relogio.Avancar(24 * time.Hour)
	sessaoID := uuid.MustParse(abertura.Sessao.ID)
	fechadoEm := abertura.Sessao.AbertoEm.Add(10 * time.Hour)

	resumo, err := f.caixa.FecharSessao(f.ctx, f.tenant.ID, sessaoID, dto.FecharSessaoRequest{FechadoEm: &fechadoEm})
	require.NoError(t, err)
	assert.Equal(t, "55.00", resumo.ValorFinal.StringFixed(2))
	require.NotNil(t, resumo.Sessao.FechadoEm)
	assert.True(t, resumo.Sessao.FechadoEm.Equal(fechadoEm))

	// the drawer is usable again today
	f.abrir(t, op, pdvID, "0")

	_, err = f.caixa.FecharSessao(f.ctx, f.tenant.ID, sessaoID, dto.FecharSessaoRequest{})
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestFecharSessao_DataForaDoIntervalo(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	abertura, err := f.caixa.Abrir(f.ctx, op, pdvID, dec("50"))
	require.NoError(t, err)
	sessaoID := uuid.MustParse(abertura.Sessao.ID)

	antes := abertura.Sessao.AbertoEm.Add(-time.Hour)
	_, err = f.caixa.FecharSessao(f.ctx, f.tenant.ID, sessaoID, dto.FecharSessaoRequest{FechadoEm: &antes})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	futuro := abertura.Sessao.AbertoEm.Add(72 * time.Hour)
	_, err = f.caixa.FecharSessao(f.ctx, f.tenant.ID, sessaoID, dto.FecharSessaoRequest{FechadoEm: &futuro})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	assert.Len(t, f.sessoesAbertas(t), 1)
}

func TestRelatorio_SessaoFechadaUsaSnapshot(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	abertura, err := f.caixa.Abrir(f.ctx, op, pdvID, dec("10"))
	require.NoError(t, err)
	cupom, err := f.vendas.RegistrarPDV(f.ctx, op, vendaPDV(pdvID, f.forma.ID, "25.00", 1, "0"))
	require.NoError(t, err)
	_, err = f.caixa.Fechar(f.ctx, op, pdvID, nil)
	require.NoError(t, err)

	// the closed totals stay final
	_, err = f.vendas.Cancelar(f.ctx, f.tenant.ID, uuid.MustParse(cupom.Venda.ID))
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))

	rel, err := f.caixa.Relatorio(f.ctx, f.tenant.ID, uuid.MustParse(abertura.Sessao.ID))
	require.NoError(t, err)
	assert.Equal(t, "FECHADA", rel.Status)
	assert.Equal(t, "25.00", rel.TotalVendas.StringFixed(2))
	assert.Equal(t, "35.00", rel.ValorFinal.StringFixed(2))
	assert.Equal(t, 1, rel.QtdVendas)
	assert.Len(t, rel.Vendas, rel.QtdVendas)
	require.NotNil(t, rel.Operador)
	assert.Equal(t, op.Nome, rel.Operador.Nome)

	_, err = f.caixa.Relatorio(f.ctx, f.tenant.ID, uuid.New())
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestPendentesDiaAnterior(t *testing.T) {
	f := novoFixture(t)
	op := f.novoOperador(t, "ana")
	pdvID := f.novoPDV(t, "Caixa 1")
	f.abrir(t, op, pdvID, "10")

	pendentes, err := f.caixa.PendentesDiaAnterior(f.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pendentes)

	f.relogio.Avancar(24 * time.Hour)
	pendentes, err = f.caixa.PendentesDiaAnterior(f.ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pendentes, 1)
}

// Random open/close/handoff sequences never leave a drawer with two open
// sessions or an operator bound to two drawers.
func TestCaixa_VinculosSobSequenciasAleatorias(t *testing.T) {
	f := novoFixture(t)
	ops := []service.OperadorContext{f.novoOperador(t, "ana"), f.novoOperador(t, "bia"), f.novoOperador(t, "caio")}
	pdvs := []uuid.UUID{f.novoPDV(t, "Caixa 1"), f.novoPDV(t, "Caixa 2")}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		op := ops[rng.Intn(len(ops))]
		pdvID := pdvs[rng.Intn(len(pdvs))]
		switch rng.Intn(4) {
		case 0, 1:
			_, _ = f.caixa.Abrir(f.ctx, op, pdvID, dec("10"))
		case 2:
			_, _ = f.caixa.Fechar(f.ctx, op, pdvID, nil)
		case 3:
			_, _ = f.pdvs.TrocarOperador(f.ctx, op, pdvID)
		}

		porPDV := map[uuid.UUID]int{}
		for _, s := range f.sessoesAbertas(t) {
			porPDV[s.PDVID]++
		}
		vinculos := map[uuid.UUID]int{}
		for _, id := range pdvs {
			assert.LessOrEqual(t, porPDV[id], 1)
			pdv, err := f.store.PDVs().FindByID(f.ctx, f.tenant.ID, id)
			require.NoError(t, err)
			if pdv.Status == model.PDVAberto {
				require.NotNil(t, pdv.OperadorID)
				vinculos[*pdv.OperadorID]++
				assert.Equal(t, 1, porPDV[id])
			} else {
				assert.Nil(t, pdv.OperadorID)
				assert.Equal(t, 0, porPDV[id])
			}
		}
		for _, n := range vinculos {
			assert.Equal(t, 1, n)
		}
	}
}

func vendaPDV(pdvID, formaID uuid.UUID, preco string, qtd int, taxa string) dto.RegistrarVendaPDVRequest {
	return dto.RegistrarVendaPDVRequest{
		PDVID:            pdvID.String(),
		FormaPagamentoID: formaID.String(),
		Itens:            []dto.ItemVendaRequest{{Nome: "Pizza", Preco: dec(preco), Quantidade: qtd}},
		TaxaEntrega:      dec(taxa),
	}
}
