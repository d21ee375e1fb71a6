package worker

// pdf_worker.go
// Renders receipt and closing-report PDFs into the storage directory after
// the sale or the close has been committed. The request path never waits
// on these files; reprint endpoints render on demand.

import (
	"context"
	"encoding/json"
	"fmt"

	"deliverypdv/internal/dto"
	"deliverypdv/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CupomLoader interface {
	PorID(ctx context.Context, tenantID, vendaID uuid.UUID) (*dto.CupomResponse, error)
}

type RelatorioLoader interface {
	Relatorio(ctx context.Context, tenantID, sessaoID uuid.UUID) (*dto.ResumoCaixaResponse, error)
}

type PDFWorker struct {
	cupons      CupomLoader
	relatorios  RelatorioLoader
	storagePath string
}

func NewPDFWorker(cupons CupomLoader, relatorios RelatorioLoader, storagePath string) *PDFWorker {
	return &PDFWorker{cupons: cupons, relatorios: relatorios, storagePath: storagePath}
}

// Handlers maps job types onto this worker's processors.
func (w *PDFWorker) Handlers() map[string]Handler {
	return map[string]Handler{
		JobCupom:      w.ProcessCupom,
		JobFechamento: w.ProcessFechamento,
	}
}

func (w *PDFWorker) ProcessCupom(ctx context.Context, raw json.RawMessage) error {
	var payload CupomJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("payload inválido: %w", err)
	}
	tenantID, vendaID, err := parseIDs(payload.TenantID, payload.VendaID)
	if err != nil {
		return err
	}

	cupom, err := w.cupons.PorID(ctx, tenantID, vendaID)
	if err != nil {
		return err
	}
	path, err := infra.SaveCupomPDF(infra.CupomFromDTO(cupom), w.storagePath, vendaID.String())
	if err != nil {
		return err
	}
	log.Info().Str("pdf", path).Str("venda_id", payload.VendaID).Msg("pdf_worker: cupom gerado")
	return nil
}

func (w *PDFWorker) ProcessFechamento(ctx context.Context, raw json.RawMessage) error {
	var payload FechamentoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("payload inválido: %w", err)
	}
	tenantID, sessaoID, err := parseIDs(payload.TenantID, payload.SessaoID)
	if err != nil {
		return err
	}

	resumo, err := w.relatorios.Relatorio(ctx, tenantID, sessaoID)
	if err != nil {
		return err
	}
	path, err := infra.SaveFechamentoPDF(infra.FechamentoFromDTO(resumo), w.storagePath, sessaoID.String())
	if err != nil {
		return err
	}
	log.Info().Str("pdf", path).Str("sessao_id", payload.SessaoID).Msg("pdf_worker: fechamento gerado")
	return nil
}

func parseIDs(tenant, id string) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("tenant_id inválido: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("id inválido: %w", err)
	}
	return tenantID, parsed, nil
}
