package handler

import (
	"net/http"

	"deliverypdv/internal/dto"
	"deliverypdv/internal/model"
	"deliverypdv/internal/service"

	"github.com/gin-gonic/gin"
)

type CaixaHandler struct {
	operadorAuth
	svc service.CaixaService
}

func NewCaixaHandler(svc service.CaixaService, operadores service.OperadorService) *CaixaHandler {
	return &CaixaHandler{operadorAuth: operadorAuth{operadores}, svc: svc}
}

// Abrir godoc
// @Summary Abre o caixa de um PDV fechado
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} dto.AberturaResponse
// @Failure 401 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), op, mustUUID(req.PDVID), req.ValorInicial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Sangria godoc
// @Summary Registra uma retirada de dinheiro do caixa
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.MovimentoCaixaRequest true "Valor e motivo"
// @Success 201 {object} dto.MovimentoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/caixa/sangria [post]
func (h *CaixaHandler) Sangria(c *gin.Context) {
	h.movimento(c, model.MovimentoSangria)
}

// Suprimento godoc
// @Summary Registra uma entrada de dinheiro no caixa
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.MovimentoCaixaRequest true "Valor e motivo"
// @Success 201 {object} dto.MovimentoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/caixa/suprimento [post]
func (h *CaixaHandler) Suprimento(c *gin.Context) {
	h.movimento(c, model.MovimentoSuprimento)
}

func (h *CaixaHandler) movimento(c *gin.Context, tipo string) {
	var req dto.MovimentoCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.RegistrarMovimento(c.Request.Context(), op, mustUUID(req.PDVID), tipo, req.Valor, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Atual godoc
// @Summary Resumo do caixa aberto até o momento
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.CaixaAtualRequest true "Operador e PDV"
// @Success 200 {object} dto.ResumoCaixaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/caixa/atual [post]
func (h *CaixaHandler) Atual(c *gin.Context) {
	var req dto.CaixaAtualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.Atual(c.Request.Context(), op, mustUUID(req.PDVID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Fechar godoc
// @Summary Fecha o caixa do dia e libera o operador
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.FecharCaixaRequest true "Operador, PDV e observação"
// @Success 200 {object} dto.ResumoCaixaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), op, mustUUID(req.PDVID), req.Observacao)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Relatorio godoc
// @Summary Relatório de uma sessão de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.ResumoCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/{tenantSlug}/caixa/sessoes/{id} [get]
func (h *CaixaHandler) Relatorio(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Relatorio(c.Request.Context(), tenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FecharSessao godoc
// @Summary Fechamento administrativo, inclusive de sessões de dias anteriores
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param id path string true "ID da sessão"
// @Param body body dto.FecharSessaoRequest false "Observação e data de fechamento"
// @Success 200 {object} dto.ResumoCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/caixa/sessoes/{id}/fechar [post]
func (h *CaixaHandler) FecharSessao(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.FecharSessaoRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.FecharSessao(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
