package infra

// pdf.go renders thermal-receipt sized PDFs with go-pdf/fpdf: the sale
// receipt (cupom) and the cash session closing report.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// CupomLinha is one printed item line.
type CupomLinha struct {
	Nome       string
	Quantidade int
	Subtotal   decimal.Decimal
}

// Cupom is everything printed on a sale receipt.
type Cupom struct {
	Estabelecimento string
	PDV             string
	Operador        string
	NrVenda         string
	Status          string
	FormaPagamento  string
	Data            time.Time
	Itens           []CupomLinha
	TaxaEntrega     decimal.Decimal
	Total           decimal.Decimal
	Troco           *decimal.Decimal
}

// Fechamento is everything printed on a closing report.
type Fechamento struct {
	Estabelecimento  string
	PDV              string
	Operador         string
	AbertoEm         time.Time
	FechadoEm        time.Time
	ValorInicial     decimal.Decimal
	TotalVendas      decimal.Decimal
	TotalSuprimentos decimal.Decimal
	TotalSangrias    decimal.Decimal
	ValorFinal       decimal.Decimal
	QtdVendas        int
	QtdSangrias      int
	QtdSuprimentos   int
	Observacao       string
}

const receiptWidth = 74.0

func newReceipt(lines int) (*fpdf.Fpdf, func(string) string, float64) {
	// 74mm wide, tall enough for the header, footer and every line.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: receiptWidth, Ht: 80 + float64(lines)*5},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return pdf, tr, receiptWidth - 8
}

func separator(pdf *fpdf.Fpdf) {
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), receiptWidth-4, pdf.GetY())
	pdf.Ln(2)
}

func money(d decimal.Decimal) string { return "R$ " + d.StringFixed(2) }

// RenderCupomPDF writes the receipt to w.
func RenderCupomPDF(w io.Writer, c Cupom) error {
	pdf, tr, contentW := newReceipt(len(c.Itens))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(c.Estabelecimento), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Cupom não fiscal"), "", 1, "C", false, 0, "")
	separator(pdf)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("Venda Nº "+c.NrVenda), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, c.Data.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("PDV: "+c.PDV), "", 1, "L", false, 0, "")
	if c.Operador != "" {
		pdf.CellFormat(contentW, 4, tr("Operador: "+c.Operador), "", 1, "L", false, 0, "")
	}
	if c.Status == "CANCELADO" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "*** VENDA CANCELADA ***", "", 1, "C", false, 0, "")
	}
	separator(pdf)

	col1, col2, col3 := contentW*0.55, contentW*0.15, contentW*0.30
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range c.Itens {
		nome := item.Nome
		if len([]rune(nome)) > 24 {
			nome = string([]rune(nome)[:23]) + "."
		}
		pdf.CellFormat(col1, 5, tr(nome), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantidade), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, money(item.Subtotal), "", 1, "R", false, 0, "")
	}
	separator(pdf)

	if !c.TaxaEntrega.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Taxa de entrega:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, money(c.TaxaEntrega), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, money(c.Total), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, tr("Pagamento: "+c.FormaPagamento), "", 1, "L", false, 0, "")
	if c.Troco != nil && c.Troco.IsPositive() {
		pdf.CellFormat(col1+col2, 4, "Troco:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, money(*c.Troco), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Obrigado pela preferência!"), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// RenderFechamentoPDF writes the closing report to w.
func RenderFechamentoPDF(w io.Writer, f Fechamento) error {
	pdf, tr, contentW := newReceipt(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(f.Estabelecimento), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Fechamento de caixa", "", 1, "C", false, 0, "")
	separator(pdf)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("PDV: "+f.PDV), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Operador: "+f.Operador), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Abertura: "+f.AbertoEm.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Fechamento: "+f.FechadoEm.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	separator(pdf)

	label, value := contentW*0.62, contentW*0.38
	row := func(l string, v decimal.Decimal) {
		pdf.CellFormat(label, 5, tr(l), "", 0, "L", false, 0, "")
		pdf.CellFormat(value, 5, money(v), "", 1, "R", false, 0, "")
	}
	row("Valor inicial", f.ValorInicial)
	row(fmt.Sprintf("Vendas (%d)", f.QtdVendas), f.TotalVendas)
	row(fmt.Sprintf("Suprimentos (%d)", f.QtdSuprimentos), f.TotalSuprimentos)
	row(fmt.Sprintf("Sangrias (%d)", f.QtdSangrias), f.TotalSangrias.Neg())
	separator(pdf)

	pdf.SetFont("Helvetica", "B", 9)
	row("Valor final", f.ValorFinal)

	if f.Observacao != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 7)
		pdf.MultiCell(contentW, 4, tr("Obs.: "+f.Observacao), "", "L", false)
	}
	return pdf.Output(w)
}

// SaveCupomPDF renders the receipt into storagePath/cupom_{nrVenda}_{id}.pdf.
func SaveCupomPDF(c Cupom, storagePath, id string) (string, error) {
	return saveTo(storagePath, fmt.Sprintf("cupom_%s_%s.pdf", c.NrVenda, id), func(w io.Writer) error {
		return RenderCupomPDF(w, c)
	})
}

// SaveFechamentoPDF renders the closing report into storagePath/fechamento_{id}.pdf.
func SaveFechamentoPDF(f Fechamento, storagePath, id string) (string, error) {
	return saveTo(storagePath, fmt.Sprintf("fechamento_%s.pdf", id), func(w io.Writer) error {
		return RenderFechamentoPDF(w, f)
	})
}

func saveTo(dir, name string, render func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("pdf: render: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}
