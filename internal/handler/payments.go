package handler

import (
	"errors"
	"net/http"

	"schoolpay/internal/apierror"
	"schoolpay/internal/dto"
	"schoolpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// respondServiceError maps service sentinels onto HTTP status codes. Errors
// outside the sentinel families are internal failures: they are handed to the
// error-handler middleware, which logs them and responds 500 with a generic
// message so nothing internal reaches the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRegistrationNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrReceiptNotReady):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPaymentAlreadyCompleted):
		c.JSON(http.StatusBadRequest, apierror.New("Payment for this registration has already been completed"))
	case errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrUnknownPaymentMethod),
		errors.Is(err, service.ErrUnknownPaymentDuration),
		errors.Is(err, service.ErrManualReferenceMissing),
		errors.Is(err, service.ErrManualAmountMissing),
		errors.Is(err, service.ErrNotGatewayPayment),
		errors.Is(err, service.ErrNoPricingSchema),
		errors.Is(err, service.ErrInvalidStudentID),
		errors.Is(err, service.ErrInvalidBranchID),
		errors.Is(err, service.ErrNotReadyForEnrollment),
		errors.Is(err, service.ErrAlreadyFinalized):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}

// GetPaymentDetail godoc
// @Summary      Payment page detail
// @Description  Returns the registration with student, branch, grade and the latest invoice for the payment page.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Registration UUID"
// @Success      200 {object} dto.PaymentDetailResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/registrations/{id}/payment [get]
func (h *PaymentsHandler) GetPaymentDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid registration ID"))
		return
	}

	resp, err := h.svc.GetPaymentDetail(c.Request.Context(), actorFromClaims(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitPayment godoc
// @Summary      Submit a registration payment
// @Description  Atomically creates the invoice with its items and the payment record, and updates the registration. Manual methods settle synchronously; gateway methods return a payment link.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Registration UUID"
// @Param        body body dto.SubmitPaymentRequest true "Payment details"
// @Success      201  {object} dto.SubmitPaymentResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/registrations/{id}/payment [post]
func (h *PaymentsHandler) SubmitPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid registration ID"))
		return
	}

	var req dto.SubmitPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.SubmitPayment(c.Request.Context(), actorFromClaims(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ConfirmPayment godoc
// @Summary      Gateway payment confirmation callback
// @Description  Called by the payment gateway after the parent completes an online payment. Settles the pending payment, marks the invoice paid and completes the registration.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        number path string                    true "Payment number (PAY-XXXXXX)"
// @Param        body   body dto.ConfirmPaymentRequest true "Gateway transaction reference"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/payments/{number}/confirm [post]
func (h *PaymentsHandler) ConfirmPayment(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid payment number"))
		return
	}

	var req dto.ConfirmPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.ConfirmGatewayPayment(c.Request.Context(), number, req); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
