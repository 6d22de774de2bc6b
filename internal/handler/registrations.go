package handler

import (
	"net/http"

	"schoolpay/internal/apierror"
	"schoolpay/internal/dto"
	"schoolpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegistrationsHandler struct{ svc service.RegistrationService }

func NewRegistrationsHandler(svc service.RegistrationService) *RegistrationsHandler {
	return &RegistrationsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a registration
// @Description  Opens a new registration for a student, resolving fees from the branch/grade pricing schema.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateRegistrationRequest true "Student and payment duration"
// @Success      201  {object} dto.RegistrationResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/registrations [post]
func (h *RegistrationsHandler) Create(c *gin.Context) {
	var req dto.CreateRegistrationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Registration detail
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Registration UUID"
// @Success      200 {object} dto.RegistrationResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/registrations/{id} [get]
func (h *RegistrationsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid registration ID"))
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), actorFromClaims(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Enroll godoc
// @Summary      Enroll a paid registration
// @Description  Moves a PAYMENT_COMPLETED registration to ENROLLED.
// @Tags         registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Registration UUID"
// @Success      200 {object} dto.RegistrationResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/registrations/{id}/enroll [post]
func (h *RegistrationsHandler) Enroll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid registration ID"))
		return
	}

	resp, err := h.svc.Enroll(c.Request.Context(), actorFromClaims(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancel a registration
// @Description  Cancels a non-finalized registration with a reason.
// @Tags         registrations
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string                        true "Registration UUID"
// @Param        body body dto.CancelRegistrationRequest true "Cancellation reason"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/registrations/{id} [delete]
func (h *RegistrationsHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid registration ID"))
		return
	}

	var req dto.CancelRegistrationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), actorFromClaims(c), id, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
