package handler

import (
	"net/http"

	"schoolpay/internal/apierror"
	"schoolpay/internal/dto"
	"schoolpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// List godoc
// @Summary      List invoices
// @Description  Returns a paginated invoice list scoped to the caller's branch. Admins may filter any branch.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        page           query int    false "Page (default 1)"
// @Param        limit          query int    false "Items per page (default 20, max 100)"
// @Param        status         query string false "PENDING | PAID | PARTIALLY_PAID | OVERDUE | CANCELLED"
// @Param        branch_id      query string false "Branch UUID (admin only)"
// @Param        payment_method query string false "CASH | BANK_TRANSFER | TELEBIRR | ONLINE"
// @Param        search         query string false "Invoice number or student name / ID"
// @Success      200 {object} dto.InvoiceListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	resp, err := h.svc.List(c.Request.Context(), actorFromClaims(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Invoice detail
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice UUID"
// @Success      200 {object} dto.InvoiceResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/invoices/{id} [get]
func (h *InvoicesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid invoice ID"))
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), actorFromClaims(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadPDF godoc
// @Summary      Download the receipt PDF
// @Description  Serves the generated receipt PDF for a settled invoice.
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Invoice UUID"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Router       /v1/invoices/{id}/pdf [get]
func (h *InvoicesHandler) DownloadPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid invoice ID"))
		return
	}

	path, err := h.svc.GetPDFPath(c.Request.Context(), actorFromClaims(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if path == "" {
		c.JSON(http.StatusNotFound, apierror.New("Receipt PDF not generated yet"))
		return
	}
	c.FileAttachment(path, "receipt.pdf")
}
