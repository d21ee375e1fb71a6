package handler

import (
	"net/http"

	"deliverypdv/internal/dto"
	"deliverypdv/internal/service"

	"github.com/gin-gonic/gin"
)

type VendasHandler struct {
	operadorAuth
	svc service.VendaService
}

func NewVendasHandler(svc service.VendaService, operadores service.OperadorService) *VendasHandler {
	return &VendasHandler{operadorAuth: operadorAuth{operadores}, svc: svc}
}

// RegistrarPDV godoc
// @Summary Registra uma venda de balcão no PDV
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.RegistrarVendaPDVRequest true "Itens e pagamento"
// @Success 201 {object} dto.CupomResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/vendas [post]
func (h *VendasHandler) RegistrarPDV(c *gin.Context) {
	var req dto.RegistrarVendaPDVRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.RegistrarPDV(c.Request.Context(), op, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CancelarVenda godoc
// @Summary Cancela uma venda do PDV pelo número
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.CancelarVendaPDVRequest true "Número da venda"
// @Success 200 {object} dto.VendaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/cancelar-venda [post]
func (h *VendasHandler) CancelarVenda(c *gin.Context) {
	var req dto.CancelarVendaPDVRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.CancelarPorNumero(c.Request.Context(), op, mustUUID(req.PDVID), req.NrVenda)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelarUltimaVenda godoc
// @Summary Cancela a última venda aceita do PDV
// @Tags pdv
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.CancelarUltimaVendaRequest true "Operador e PDV"
// @Success 200 {object} dto.VendaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/cancelar-ultima-venda [post]
func (h *VendasHandler) CancelarUltimaVenda(c *gin.Context) {
	var req dto.CancelarUltimaVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, ok := h.autenticar(c, req.CredenciaisOperador)
	if !ok {
		return
	}
	resp, err := h.svc.CancelarUltima(c.Request.Context(), op, mustUUID(req.PDVID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Registrar godoc
// @Summary Registra a venda de um pedido de delivery
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param body body dto.RegistrarVendaRequest true "Pedido e pagamento"
// @Success 201 {object} dto.VendaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/vendas [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AlterarStatus godoc
// @Summary Altera o status de uma venda
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param id path string true "ID da venda"
// @Param body body dto.AlterarStatusVendaRequest true "Novo status"
// @Success 200 {object} dto.VendaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/{tenantSlug}/vendas/{id}/status [patch]
func (h *VendasHandler) AlterarStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AlterarStatusVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AlterarStatus(c.Request.Context(), tenantID(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela uma venda pelo ID
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param id path string true "ID da venda"
// @Success 200 {object} dto.VendaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/{tenantSlug}/vendas/{id} [delete]
func (h *VendasHandler) Cancelar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), tenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
