package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"deliverypdv/internal/dto"
	"deliverypdv/internal/infra"
	"deliverypdv/internal/service"

	"github.com/gin-gonic/gin"
)

type CupomHandler struct{ svc service.CupomService }

func NewCupomHandler(svc service.CupomService) *CupomHandler { return &CupomHandler{svc: svc} }

// Reimprimir godoc
// @Summary Reimprime o cupom de uma venda pelo número
// @Tags pdv
// @Accept json
// @Produce json,application/pdf
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param formato query string false "pdf para receber o cupom renderizado"
// @Param body body dto.ReimprimirCupomRequest true "PDV e número da venda"
// @Success 200 {object} dto.CupomResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/reimprimir-cupom [post]
func (h *CupomHandler) Reimprimir(c *gin.Context) {
	var req dto.ReimprimirCupomRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PorNumero(c.Request.Context(), tenantID(c), mustUUID(req.PDVID), req.NrVenda)
	if err != nil {
		respondError(c, err)
		return
	}
	h.responder(c, resp)
}

// ReimprimirUltimo godoc
// @Summary Reimprime o cupom da última venda do PDV
// @Tags pdv
// @Accept json
// @Produce json,application/pdf
// @Security BearerAuth
// @Param tenantSlug path string true "Estabelecimento"
// @Param formato query string false "pdf para receber o cupom renderizado"
// @Param body body dto.ReimprimirUltimoCupomRequest true "PDV"
// @Success 200 {object} dto.CupomResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/{tenantSlug}/pdv/reimprimir-ultimo-cupom [post]
func (h *CupomHandler) ReimprimirUltimo(c *gin.Context) {
	var req dto.ReimprimirUltimoCupomRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ultimo(c.Request.Context(), tenantID(c), mustUUID(req.PDVID))
	if err != nil {
		respondError(c, err)
		return
	}
	h.responder(c, resp)
}

func (h *CupomHandler) responder(c *gin.Context, cupom *dto.CupomResponse) {
	if c.Query("formato") != "pdf" {
		c.JSON(http.StatusOK, cupom)
		return
	}
	var buf bytes.Buffer
	if err := infra.RenderCupomPDF(&buf, infra.CupomFromDTO(cupom)); err != nil {
		respondError(c, fmt.Errorf("render cupom %s: %w", cupom.Venda.NrVenda, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="cupom_%s.pdf"`, cupom.Venda.NrVenda))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
