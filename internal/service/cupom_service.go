package service

import (
	"context"
	"errors"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"

	"github.com/google/uuid"
)

// CupomService reads receipts back. It never writes and needs no operator.
type CupomService interface {
	PorNumero(ctx context.Context, tenantID, pdvID uuid.UUID, nrVenda string) (*dto.CupomResponse, error)
	// Ultimo returns the most recent sale of the drawer, whatever its status.
	Ultimo(ctx context.Context, tenantID, pdvID uuid.UUID) (*dto.CupomResponse, error)
	PorID(ctx context.Context, tenantID, vendaID uuid.UUID) (*dto.CupomResponse, error)
}

type cupomService struct {
	store repository.Store
}

func NewCupomService(store repository.Store) CupomService {
	return &cupomService{store: store}
}

func (s *cupomService) PorNumero(ctx context.Context, tenantID, pdvID uuid.UUID, nrVenda string) (*dto.CupomResponse, error) {
	if err := s.pdvExiste(ctx, tenantID, pdvID); err != nil {
		return nil, err
	}
	v, err := s.store.Vendas().FindByNumero(ctx, tenantID, pdvID, NormalizarNrVenda(nrVenda))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Venda não encontrada neste PDV")
		}
		return nil, err
	}
	return s.montar(ctx, tenantID, v)
}

func (s *cupomService) Ultimo(ctx context.Context, tenantID, pdvID uuid.UUID) (*dto.CupomResponse, error) {
	if err := s.pdvExiste(ctx, tenantID, pdvID); err != nil {
		return nil, err
	}
	v, err := s.store.Vendas().FindUltima(ctx, tenantID, pdvID, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Nenhuma venda encontrada neste PDV")
		}
		return nil, err
	}
	return s.montar(ctx, tenantID, v)
}

func (s *cupomService) PorID(ctx context.Context, tenantID, vendaID uuid.UUID) (*dto.CupomResponse, error) {
	v, err := s.store.Vendas().FindByID(ctx, tenantID, vendaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Venda não encontrada")
		}
		return nil, err
	}
	return s.montar(ctx, tenantID, v)
}

func (s *cupomService) pdvExiste(ctx context.Context, tenantID, pdvID uuid.UUID) error {
	if _, err := s.store.PDVs().FindByID(ctx, tenantID, pdvID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("PDV não encontrado")
		}
		return err
	}
	return nil
}

func (s *cupomService) montar(ctx context.Context, tenantID uuid.UUID, v *model.Venda) (*dto.CupomResponse, error) {
	tenant, err := s.store.Tenants().FindByID(ctx, tenantID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	estabelecimento := ""
	if tenant != nil {
		estabelecimento = tenant.Nome
	}
	return montarCupom(estabelecimento, v), nil
}
