package service_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriarPDV(t *testing.T) {
	f := novoFixture(t)

	resp, err := f.pdvs.Criar(f.ctx, f.tenant.ID, dto.CriarPDVRequest{Nome: " Balcão "})
	require.NoError(t, err)
	assert.Equal(t, "Balcão", resp.Nome)
	assert.Equal(t, model.PDVFechado, resp.Status)
	assert.Nil(t, resp.Operador)

	_, err = f.pdvs.Criar(f.ctx, f.tenant.ID, dto.CriarPDVRequest{Nome: "Balcão"})
	assert.True(t, apierror.HasCode(err, apierror.CodeDuplicateDrawerName))

	lista, err := f.pdvs.Listar(f.ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, lista, 1)
}

func TestCriarPDV_LimiteDoPlano(t *testing.T) {
	f := novoFixture(t)
	for i := 0; i < f.tenant.LimitePDVs; i++ {
		_, err := f.pdvs.Criar(f.ctx, f.tenant.ID, dto.CriarPDVRequest{Nome: fmt.Sprintf("Caixa %d", i)})
		require.NoError(t, err)
	}

	_, err := f.pdvs.Criar(f.ctx, f.tenant.ID, dto.CriarPDVRequest{Nome: "Extra"})
	assert.True(t, apierror.IsKind(err, apierror.KindQuotaExceeded))

	_, err = f.pdvs.Criar(f.ctx, uuid.New(), dto.CriarPDVRequest{Nome: "Extra"})
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestCriarPDV_ConcorrenteRespeitaLimite(t *testing.T) {
	f := novoFixture(t)
	var wg sync.WaitGroup
	var mu sync.Mutex
	criados := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.pdvs.Criar(f.ctx, f.tenant.ID, dto.CriarPDVRequest{Nome: fmt.Sprintf("Caixa %d", i)}); err == nil {
				mu.Lock()
				criados++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, f.tenant.LimitePDVs, criados)
}

func TestTrocarOperador(t *testing.T) {
	f := novoFixture(t)
	ana := f.novoOperador(t, "ana")
	bia := f.novoOperador(t, "bia")
	pdvID := f.novoPDV(t, "Caixa 1")
	abertura, err := f.caixa.Abrir(f.ctx, ana, pdvID, dec("100"))
	require.NoError(t, err)
	_, err = f.vendas.RegistrarPDV(f.ctx, ana, vendaPDV(pdvID, f.forma.ID, "10", 1, "0"))
	require.NoError(t, err)

	resp, err := f.pdvs.TrocarOperador(f.ctx, bia, pdvID)
	require.NoError(t, err)
	require.NotNil(t, resp.Operador)
	assert.Equal(t, bia.OperadorID.String(), resp.Operador.ID)

	// ana no longer acts on the drawer; bia continues the same session
	_, err = f.vendas.RegistrarPDV(f.ctx, ana, vendaPDV(pdvID, f.forma.ID, "10", 1, "0"))
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
	_, err = f.vendas.RegistrarPDV(f.ctx, bia, vendaPDV(pdvID, f.forma.ID, "5", 1, "0"))
	require.NoError(t, err)

	resumo, err := f.caixa.Fechar(f.ctx, bia, pdvID, nil)
	require.NoError(t, err)
	assert.Equal(t, abertura.Sessao.ID, resumo.Sessao.ID)
	assert.Equal(t, "115.00", resumo.ValorFinal.StringFixed(2))
	assert.Equal(t, 2, resumo.QtdVendas)
}

func TestTrocarOperador_Falhas(t *testing.T) {
	f := novoFixture(t)
	ana := f.novoOperador(t, "ana")
	bia := f.novoOperador(t, "bia")
	pdv1 := f.novoPDV(t, "Caixa 1")
	pdv2 := f.novoPDV(t, "Caixa 2")

	_, err := f.pdvs.TrocarOperador(f.ctx, bia, pdv1)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))

	f.abrir(t, ana, pdv1, "0")
	f.abrir(t, bia, pdv2, "0")
	_, err = f.pdvs.TrocarOperador(f.ctx, bia, pdv1)
	assert.True(t, apierror.HasCode(err, apierror.CodeOperatorAlreadyBound))

	pdv, err := f.store.PDVs().FindByID(f.ctx, f.tenant.ID, pdv1)
	require.NoError(t, err)
	assert.True(t, pdv.VinculadoA(ana.OperadorID))

	f.relogio.Avancar(24 * time.Hour)
	caio := f.novoOperador(t, "caio")
	_, err = f.pdvs.TrocarOperador(f.ctx, caio, pdv1)
	assert.True(t, apierror.HasCode(err, apierror.CodePendingClosureFromPriorDay))
}
