package infra

import (
	"bytes"
	"os"
	"testing"
	"time"

	"deliverypdv/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCupom() Cupom {
	troco := decimal.RequireFromString("4.50")
	return Cupom{
		Estabelecimento: "Pizzaria São João",
		PDV:             "Caixa 01",
		Operador:        "Joana",
		NrVenda:         "00042",
		Status:          "ACEITO",
		FormaPagamento:  "Dinheiro",
		Data:            time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
		Itens: []CupomLinha{
			{Nome: "Pizza calabresa grande com borda recheada", Quantidade: 1, Subtotal: decimal.RequireFromString("45.50")},
			{Nome: "Refrigerante", Quantidade: 2, Subtotal: decimal.RequireFromString("12.00")},
		},
		Total: decimal.RequireFromString("57.50"),
		Troco: &troco,
	}
}

func TestRenderCupomPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCupomPDF(&buf, sampleCupom()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderFechamentoPDF(t *testing.T) {
	var buf bytes.Buffer
	err := RenderFechamentoPDF(&buf, Fechamento{
		Estabelecimento:  "Pizzaria",
		PDV:              "Caixa 01",
		Operador:         "Joana",
		AbertoEm:         time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		FechadoEm:        time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		ValorInicial:     decimal.RequireFromString("100.00"),
		TotalVendas:      decimal.RequireFromString("57.75"),
		TotalSangrias:    decimal.RequireFromString("20.00"),
		TotalSuprimentos: decimal.RequireFromString("5.00"),
		ValorFinal:       decimal.RequireFromString("142.75"),
		Observacao:       "Conferido",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestSaveCupomPDF(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveCupomPDF(sampleCupom(), dir, "abc")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestCupomFromDTO(t *testing.T) {
	troco := decimal.RequireFromString("9.75")
	c := CupomFromDTO(&dto.CupomResponse{
		Venda:           dto.VendaResponse{NrVenda: "00007", Status: "ACEITO"},
		Estabelecimento: "Pizzaria Bella",
		PDV:             "Caixa 1",
		Itens: []dto.ItemCupomResponse{
			{Nome: "Pizza", Quantidade: 2, Subtotal: decimal.RequireFromString("80.00")},
		},
		Total: decimal.RequireFromString("90.25"),
		Troco: &troco,
	})
	assert.Equal(t, "00007", c.NrVenda)
	assert.Equal(t, "Caixa 1", c.PDV)
	require.Len(t, c.Itens, 1)
	assert.Equal(t, 2, c.Itens[0].Quantidade)
	assert.Equal(t, "9.75", c.Troco.StringFixed(2))
}
