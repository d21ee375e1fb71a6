package handler

import (
	"net/http"

	"deliverypdv/internal/dto"
	"deliverypdv/internal/service"

	"github.com/gin-gonic/gin"
)

type OperadoresHandler struct{ svc service.OperadorService }

func NewOperadoresHandler(svc service.OperadorService) *OperadoresHandler {
	return &OperadoresHandler{svc: svc}
}

// Criar godoc
// @Summary Cadastra um operador de caixa
// @Tags operadores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.CriarOperadorRequest true "Dados do operador"
// @Success 201 {object} dto.OperadorResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/{tenantSlug}/operadores [post]
func (h *OperadoresHandler) Criar(c *gin.Context) {
	var req dto.CriarOperadorRequest
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
// @Summary Lista os operadores do estabelecimento
// @Tags operadores
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Success 200 {array} dto.OperadorResponse
// @Router /v1/{tenantSlug}/operadores [get]
func (h *OperadoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), tenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desativar godoc
// @Summary Desativa um operador
// @Tags operadores
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param id path string true "ID do operador"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/operadores/{id} [delete]
func (h *OperadoresHandler) Desativar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), tenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
