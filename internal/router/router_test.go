package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deliverypdv/internal/config"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/middleware"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository/memstore"
	"deliverypdv/internal/router"
	"deliverypdv/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

type api struct {
	t       *testing.T
	r       *gin.Engine
	forma   *model.FormaPagamento
	admin   string
	pdv     string
	estrang string
}

func novaAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := memstore.New()
	tenant := &model.Tenant{Slug: "bella", Nome: "Pizzaria Bella", LimitePDVs: 2, Ativo: true}
	require.NoError(t, store.Tenants().Create(ctx, tenant))
	forma := &model.FormaPagamento{TenantID: tenant.ID, Nome: "Dinheiro", Tipo: "DINHEIRO", AceitaTroco: true, Ativo: true}
	require.NoError(t, store.FormasPagamento().Create(ctx, forma))

	cfg := &config.Config{
		Env:                   "test",
		JWTSecret:             testSecret,
		Timezone:              "America/Sao_Paulo",
		PDVRateLimitPerMinute: 1000,
	}
	svc := router.NewServices(cfg, store, nil, worker.NewLocalDispatcher(64))

	a := &api{t: t, r: router.New(cfg, svc, nil, nil), forma: forma}
	a.admin = a.token(middleware.RolAdmin, "bella")
	a.pdv = a.token(middleware.RolPDV, "bella")
	a.estrang = a.token(middleware.RolAdmin, "outra")
	return a
}

func (a *api) token(rol, slug string) string {
	tok, err := middleware.SignToken(testSecret, uuid.NewString(), rol, slug, time.Hour)
	require.NoError(a.t, err)
	return tok
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// preparar creates a drawer and an operator through the admin routes.
func (a *api) preparar() (pdvID, operadorCodigo string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/v1/bella/pdvs", a.admin, gin.H{"nome": "Balcão"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	pdv := decode[dto.PDVResponse](a.t, w)

	w = a.do(http.MethodPost, "/v1/bella/operadores", a.admin, gin.H{"nome": "Ana", "codigo": "10", "segredo": "1234"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return pdv.ID, "10"
}

func cred(codigo, senha, pdvID string, extra gin.H) gin.H {
	body := gin.H{"operador_id": codigo, "operador_senha": senha, "pdv_id": pdvID}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestHealth_NoBackends(t *testing.T) {
	a := novaAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"disabled"`)
}

func TestFluxoCompletoDoCaixa(t *testing.T) {
	a := novaAPI(t)
	pdvID, op := a.preparar()

	w := a.do(http.MethodPost, "/v1/bella/pdv/caixa/abrir", a.pdv, cred(op, "1234", pdvID, gin.H{"valor_inicial": 100}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	abertura := decode[dto.AberturaResponse](t, w)
	assert.Equal(t, model.PDVAberto, abertura.PDV.Status)

	w = a.do(http.MethodPost, "/v1/bella/pdv/vendas", a.pdv, cred(op, "1234", pdvID, gin.H{
		"forma_pagamento_id": a.forma.ID.String(),
		"itens":              []gin.H{{"nome": "Pizza Calabresa", "preco": 42.75, "quantidade": 1}},
		"valor_recebido":     50,
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cupom := decode[dto.CupomResponse](t, w)
	assert.Equal(t, "00001", cupom.Venda.NrVenda)
	require.NotNil(t, cupom.Troco)
	assert.Equal(t, "7.25", cupom.Troco.StringFixed(2))

	w = a.do(http.MethodPost, "/v1/bella/pdv/caixa/sangria", a.pdv, cred(op, "1234", pdvID, gin.H{"valor": 10, "motivo": "troco do motoboy"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/bella/pdv/caixa/atual", a.pdv, cred(op, "1234", pdvID, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	atual := decode[dto.ResumoCaixaResponse](t, w)
	assert.Equal(t, "42.75", atual.TotalVendas.StringFixed(2))
	assert.Equal(t, "132.75", atual.ValorFinal.StringFixed(2))

	w = a.do(http.MethodPost, "/v1/bella/pdv/reimprimir-ultimo-cupom?formato=pdf", a.pdv, gin.H{"pdv_id": pdvID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = a.do(http.MethodPost, "/v1/bella/pdv/reimprimir-cupom", a.pdv, gin.H{"pdv_id": pdvID, "nr_venda": "1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, cupom.Venda.ID, decode[dto.CupomResponse](t, w).Venda.ID)

	w = a.do(http.MethodPost, "/v1/bella/pdv/caixa/fechar", a.pdv, cred(op, "1234", pdvID, gin.H{"observacao": "ok"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fechado := decode[dto.ResumoCaixaResponse](t, w)
	assert.Equal(t, "FECHADA", fechado.Status)
	assert.Equal(t, "132.75", fechado.ValorFinal.StringFixed(2))

	w = a.do(http.MethodGet, "/v1/bella/caixa/sessoes/"+fechado.Sessao.ID, a.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "132.75", decode[dto.ResumoCaixaResponse](t, w).ValorFinal.StringFixed(2))
}

func TestAbrir_SegredoErrado(t *testing.T) {
	a := novaAPI(t)
	pdvID, op := a.preparar()

	w := a.do(http.MethodPost, "/v1/bella/pdv/caixa/abrir", a.pdv, cred(op, "0000", pdvID, gin.H{"valor_inicial": 0}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/v1/bella/pdv/caixa/abrir", a.pdv, cred("99", "1234", pdvID, gin.H{"valor_inicial": 0}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAbrir_DuasVezesNoMesmoDia(t *testing.T) {
	a := novaAPI(t)
	pdvID, op := a.preparar()

	w := a.do(http.MethodPost, "/v1/bella/pdv/caixa/abrir", a.pdv, cred(op, "1234", pdvID, gin.H{"valor_inicial": 0}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/bella/pdvs", a.admin, gin.H{"nome": "Delivery"})
	require.Equal(t, http.StatusCreated, w.Code)
	outro := decode[dto.PDVResponse](t, w)

	w = a.do(http.MethodPost, "/v1/bella/pdv/caixa/abrir", a.pdv, cred(op, "1234", outro.ID, gin.H{"valor_inicial": 0}))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "OperatorAlreadyBound")
}

func TestValidacao(t *testing.T) {
	a := novaAPI(t)
	pdvID, op := a.preparar()

	w := a.do(http.MethodPost, "/v1/bella/pdv/caixa/sangria", a.pdv, cred(op, "1234", pdvID, gin.H{"valor": -5}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"valor"`)

	w = a.do(http.MethodPost, "/v1/bella/pdv/caixa/abrir", a.pdv, gin.H{"pdv_id": "nao-e-uuid"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodGet, "/v1/bella/caixa/sessoes/nao-e-uuid", a.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCotaDePDVs(t *testing.T) {
	a := novaAPI(t)
	for _, nome := range []string{"Caixa 1", "Caixa 2"} {
		w := a.do(http.MethodPost, "/v1/bella/pdvs", a.admin, gin.H{"nome": nome})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w := a.do(http.MethodPost, "/v1/bella/pdvs", a.admin, gin.H{"nome": "Caixa 3"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "QuotaExceeded")

	w = a.do(http.MethodPost, "/v1/bella/pdvs", a.admin, gin.H{"nome": "Caixa 1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPermissoes(t *testing.T) {
	a := novaAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/bella/pdvs", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/bella/pdvs", a.pdv, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/bella/pdvs", a.estrang, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/bella/pdvs", a.admin, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/bella/pdvs", a.token(middleware.RolSuperAdmin, ""), nil).Code)
}

func TestCancelarVendaPeloPDV(t *testing.T) {
	a := novaAPI(t)
	pdvID, op := a.preparar()

	w := a.do(http.MethodPost, "/v1/bella/pdv/caixa/abrir", a.pdv, cred(op, "1234", pdvID, gin.H{"valor_inicial": 20}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = a.do(http.MethodPost, "/v1/bella/pdv/vendas", a.pdv, cred(op, "1234", pdvID, gin.H{
		"forma_pagamento_id": a.forma.ID.String(),
		"itens":              []gin.H{{"nome": "Refrigerante", "preco": 8, "quantidade": 2}},
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/bella/pdv/cancelar-ultima-venda", a.pdv, cred(op, "1234", pdvID, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.VendaCancelado, decode[dto.VendaResponse](t, w).Status)

	w = a.do(http.MethodPost, "/v1/bella/pdv/cancelar-venda", a.pdv, cred(op, "1234", pdvID, gin.H{"nr_venda": "00001"}))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "AlreadyCancelled")

	w = a.do(http.MethodPost, "/v1/bella/pdv/caixa/atual", a.pdv, cred(op, "1234", pdvID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20.00", decode[dto.ResumoCaixaResponse](t, w).ValorFinal.StringFixed(2))
}
