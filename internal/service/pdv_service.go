package service

import (
	"context"
	"errors"
	"strings"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type PDVService interface {
	Criar(ctx context.Context, tenantID uuid.UUID, req dto.CriarPDVRequest) (*dto.PDVResponse, error)
	Listar(ctx context.Context, tenantID uuid.UUID) ([]dto.PDVResponse, error)
	// TrocarOperador hands an open drawer over to novo without closing its session.
	TrocarOperador(ctx context.Context, novo OperadorContext, pdvID uuid.UUID) (*dto.PDVResponse, error)
}

type pdvService struct {
	store   repository.Store
	locker  Locker
	relogio Relogio
}

func NewPDVService(store repository.Store, locker Locker, relogio Relogio) PDVService {
	return &pdvService{store: store, locker: locker, relogio: relogio}
}

// Criar enforces the tenant drawer quota. Creation is serialized per tenant so
// two concurrent requests cannot both pass the count check.
func (s *pdvService) Criar(ctx context.Context, tenantID uuid.UUID, req dto.CriarPDVRequest) (*dto.PDVResponse, error) {
	unlock, err := s.locker.Lock(ctx, "pdv-cota:"+tenantID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	nome := strings.TrimSpace(req.Nome)
	pdv := &model.PDV{TenantID: tenantID, Nome: nome, Status: model.PDVFechado, Ativo: true}

	err = s.store.Tx(ctx, func(tx repository.Store) error {
		tenant, err := tx.Tenants().FindByID(ctx, tenantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Estabelecimento não encontrado")
			}
			return err
		}
		if _, err := tx.PDVs().FindByNome(ctx, tenantID, nome); err == nil {
			return apierror.Conflict(apierror.CodeDuplicateDrawerName, "Já existe um PDV com este nome")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		n, err := tx.PDVs().CountAtivos(ctx, tenantID)
		if err != nil {
			return err
		}
		if n >= int64(tenant.LimitePDVs) {
			return apierror.QuotaExceeded("Limite de PDVs do plano atingido")
		}
		if err := tx.PDVs().Create(ctx, pdv); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apierror.Conflict(apierror.CodeDuplicateDrawerName, "Já existe um PDV com este nome")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("tenant_id", tenantID.String()).Str("pdv", nome).Msg("PDV criado")
	resp := pdvToResponse(pdv)
	return &resp, nil
}

func (s *pdvService) Listar(ctx context.Context, tenantID uuid.UUID) ([]dto.PDVResponse, error) {
	pdvs, err := s.store.PDVs().List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PDVResponse, 0, len(pdvs))
	for i := range pdvs {
		out = append(out, pdvToResponse(&pdvs[i]))
	}
	return out, nil
}

func (s *pdvService) TrocarOperador(ctx context.Context, novo OperadorContext, pdvID uuid.UUID) (*dto.PDVResponse, error) {
	unlock, err := s.locker.Lock(ctx, "operador:"+novo.OperadorID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var anterior uuid.UUID
	var resp dto.PDVResponse
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		pdv, err := tx.PDVs().FindByID(ctx, novo.TenantID, pdvID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("PDV não encontrado")
			}
			return err
		}
		if pdv.Status != model.PDVAberto || pdv.OperadorID == nil {
			return apierror.NotFound("PDV não encontrado ou não está aberto")
		}
		sessao, err := tx.Sessoes().FindAbertaPorPDV(ctx, pdv.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if sessao != nil && !s.relogio.MesmoDia(sessao.AbertoEm, s.relogio.Agora()) {
			return errPendenteDiaAnterior()
		}

		anterior = *pdv.OperadorID
		if anterior != novo.OperadorID {
			if err := tx.PDVs().Transferir(ctx, pdv.ID, anterior, novo.OperadorID); err != nil {
				return bindError(err)
			}
		}
		atualizado, err := tx.PDVs().FindByID(ctx, novo.TenantID, pdv.ID)
		if err != nil {
			return err
		}
		resp = pdvToResponse(atualizado)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("pdv_id", pdvID.String()).
		Str("de", anterior.String()).
		Str("para", novo.OperadorID.String()).
		Msg("operador do PDV trocado")
	return &resp, nil
}

// bindError translates a failed conditional drawer bind.
func bindError(err error) error {
	switch {
	case errors.Is(err, repository.ErrOperadorVinculado):
		return apierror.Conflict(apierror.CodeOperatorAlreadyBound, "Operador já está vinculado a outro PDV aberto")
	case errors.Is(err, repository.ErrStaleState):
		return apierror.InvalidState("O estado do PDV foi alterado, tente novamente")
	default:
		return err
	}
}

func errPendenteDiaAnterior() error {
	return apierror.Conflict(apierror.CodePendingClosureFromPriorDay,
		"Existe um caixa aberto em dia anterior neste PDV. Feche-o antes de continuar")
}
