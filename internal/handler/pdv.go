package handler

import (
	"net/http"

	"deliverypdv/internal/dto"
	"deliverypdv/internal/service"

	"github.com/gin-gonic/gin"
)

type PDVsHandler struct {
	operadorAuth
	svc service.PDVService
}

func NewPDVsHandler(svc service.PDVService, operadores service.OperadorService) *PDVsHandler {
	return &PDVsHandler{operadorAuth: operadorAuth{operadores}, svc: svc}
}

// Criar godoc
// @Summary Cria um PDV respeitando o limite do plano
// @Tags pdvs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.CriarPDVRequest true "Nome do PDV"
// @Success 201 {object} dto.PDVResponse
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdvs [post]
func (h *PDVsHandler) Criar(c *gin.Context) {
	var req dto.CriarPDVRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista os PDVs com status e operador atual
// @Tags pdvs
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Success 200 {array} dto.PDVResponse
// @Router /v1/{tenantSlug}/pdvs [get]
func (h *PDVsHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), tenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TrocarOperador godoc
// @Summary Passa um PDV aberto para outro operador sem fechar o caixa
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.TrocarOperadorRequest true "Credenciais do novo operador"
// @Success 200 {object} dto.PDVResponse
// @Failure 401 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/trocar-operador [post]
func (h *PDVsHandler) TrocarOperador(c *gin.Context) {
	var req dto.TrocarOperadorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.TrocarOperador(c.Request.Context(), op, mustUUID(req.PDVID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
