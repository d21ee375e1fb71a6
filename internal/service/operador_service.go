package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"
	"deliverypdv/internal/secret"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type OperadorService interface {
	// Autenticar checks a till credential. codigo is the operator id typed at the till.
	Autenticar(ctx context.Context, tenantID uuid.UUID, codigo, segredo string) (*OperadorContext, error)
	Criar(ctx context.Context, tenantID uuid.UUID, req dto.CriarOperadorRequest) (*dto.OperadorResponse, error)
	Listar(ctx context.Context, tenantID uuid.UUID) ([]dto.OperadorResponse, error)
	Desativar(ctx context.Context, tenantID, id uuid.UUID) error
}

type operadorService struct {
	store repository.Store
}

func NewOperadorService(store repository.Store) OperadorService {
	return &operadorService{store: store}
}

func (s *operadorService) Autenticar(ctx context.Context, tenantID uuid.UUID, codigo, segredo string) (*OperadorContext, error) {
	op, err := s.store.Operadores().FindAtivoByCodigo(ctx, tenantID, strings.TrimSpace(codigo))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("Operador não encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("buscar operador: %w", err)
	}

	ok, err := secret.Verify(segredo, op.Segredo)
	if err != nil {
		log.Warn().Err(err).Str("operador_id", op.ID.String()).Msg("segredo do operador ilegível")
		return nil, apierror.Unauthorized("Senha incorreta")
	}
	if !ok {
		return nil, apierror.Unauthorized("Senha incorreta")
	}

	if secret.NeedsRehash(op.Segredo) {
		s.rehash(ctx, op, segredo)
	}

	return &OperadorContext{
		TenantID:   op.TenantID,
		OperadorID: op.ID,
		Codigo:     op.Codigo,
		Nome:       op.Nome,
		Papeis:     op.ListaPapeis(),
	}, nil
}

// rehash upgrades a legacy secret after a successful check. A failure here
// never fails the login.
func (s *operadorService) rehash(ctx context.Context, op *model.Operador, segredo string) {
	hash, err := secret.Hash(segredo)
	if err != nil {
		log.Warn().Err(err).Str("operador_id", op.ID.String()).Msg("falha ao gerar hash do segredo")
		return
	}
	if err := s.store.Operadores().UpdateSegredo(ctx, op.ID, hash); err != nil {
		log.Warn().Err(err).Str("operador_id", op.ID.String()).Msg("falha ao atualizar segredo legado")
		return
	}
	log.Info().Str("operador_id", op.ID.String()).Msg("segredo legado convertido para hash")
}

func (s *operadorService) Criar(ctx context.Context, tenantID uuid.UUID, req dto.CriarOperadorRequest) (*dto.OperadorResponse, error) {
	hash, err := secret.Hash(req.Segredo)
	if err != nil {
		return nil, fmt.Errorf("gerar hash: %w", err)
	}

	papeis := req.Papeis
	if len(papeis) == 0 {
		papeis = []string{"operador"}
	}
	op := &model.Operador{
		TenantID: tenantID,
		Nome:     strings.TrimSpace(req.Nome),
		Codigo:   strings.TrimSpace(req.Codigo),
		Segredo:  hash,
		Ativo:    true,
		Papeis:   strings.Join(papeis, ","),
	}
	if req.UserID != nil {
		uid, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, apierror.Validation("", "user_id inválido")
		}
		op.UserID = &uid
	}

	if err := s.store.Operadores().Create(ctx, op); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apierror.Conflict(apierror.CodeDuplicateOperatorCode, "Já existe um operador com este código")
		}
		return nil, err
	}
	resp := operadorToResponse(op)
	return &resp, nil
}

func (s *operadorService) Listar(ctx context.Context, tenantID uuid.UUID) ([]dto.OperadorResponse, error) {
	ops, err := s.store.Operadores().List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OperadorResponse, 0, len(ops))
	for i := range ops {
		out = append(out, operadorToResponse(&ops[i]))
	}
	return out, nil
}

// Desativar refuses to deactivate an operator still bound to an open drawer.
func (s *operadorService) Desativar(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.store.Tx(ctx, func(tx repository.Store) error {
		if _, err := tx.Operadores().FindByID(ctx, tenantID, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Operador não encontrado")
			}
			return err
		}
		abertos, err := tx.PDVs().List(ctx, tenantID)
		if err != nil {
			return err
		}
		for i := range abertos {
			if abertos[i].VinculadoA(id) {
				return apierror.InvalidState("Operador está vinculado a um PDV aberto")
			}
		}
		if err := tx.Operadores().Desativar(ctx, tenantID, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("Operador não encontrado")
			}
			return err
		}
		return nil
	})
}
