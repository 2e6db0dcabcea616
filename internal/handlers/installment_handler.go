package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "miplata/internal/errors"
	"miplata/internal/ledger"
	"miplata/internal/models"
	"miplata/internal/services"
)

// InstallmentHandler handles installment plan requests.
type InstallmentHandler struct {
	installmentService services.InstallmentServicer
}

// NewInstallmentHandler creates a new InstallmentHandler.
func NewInstallmentHandler(installmentService services.InstallmentServicer) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

// InstallmentRequest represents the request payload for creating or
// replacing an installment plan. The paid amount is always derived.
type InstallmentRequest struct {
	Name              string           `json:"name" binding:"required,max=100"`
	Total             *decimal.Decimal `json:"total" binding:"required,gt=0"`
	TotalInstallments int              `json:"total_installments" binding:"required,min=1"`
	InstallmentsPaid  int              `json:"installments_paid" binding:"min=0,ltefield=TotalInstallments"`
}

func (r InstallmentRequest) input() services.InstallmentInput {
	return services.InstallmentInput{
		Name:              r.Name,
		TotalAmount:       *r.Total,
		TotalInstallments: r.TotalInstallments,
		InstallmentsPaid:  r.InstallmentsPaid,
	}
}

// InstallmentResponse is an installment plan with its remaining amount.
type InstallmentResponse struct {
	ledger.InstallmentPlan
	Remaining decimal.Decimal `json:"remaining"`
}

func newInstallmentResponse(p models.Installment) InstallmentResponse {
	plan := services.InstallmentToLedger(p)
	return InstallmentResponse{InstallmentPlan: plan, Remaining: plan.Remaining()}
}

// CreateInstallment handles the creation of an installment plan
// @Summary     Create installment plan
// @Description Track a purchase paid in equal installments
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InstallmentRequest true "Plan details"
// @Success     201 {object} InstallmentResponse "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments [post]
func (h *InstallmentHandler) CreateInstallment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.installmentService.CreateInstallment(c.Request.Context(), userID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"installment": newInstallmentResponse(*plan)})
}

// GetUserInstallments lists the user's installment plans
// @Summary     Get installment plans
// @Description Get every installment plan of the authenticated user, oldest first
// @Tags        installments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]InstallmentResponse "Plans"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments [get]
func (h *InstallmentHandler) GetUserInstallments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plans, err := h.installmentService.GetUserInstallments(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]InstallmentResponse, len(plans))
	for i, p := range plans {
		out[i] = newInstallmentResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"installments": out})
}

// UpdateInstallment handles replacing an installment plan
// @Summary     Update installment plan
// @Description Replace a plan; the paid amount is recomputed from the counts
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Plan ID"
// @Param       request body InstallmentRequest true "Plan details"
// @Success     200 {object} InstallmentResponse "Plan updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments/{id} [put]
func (h *InstallmentHandler) UpdateInstallment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	installmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.installmentService.UpdateInstallment(c.Request.Context(), userID, installmentID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installment": newInstallmentResponse(*plan)})
}

// DeleteInstallment handles deleting an installment plan
// @Summary     Delete installment plan
// @Tags        installments
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     204 "Plan deleted"
// @Failure     400 {object} ErrorResponse "Invalid plan ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments/{id} [delete]
func (h *InstallmentHandler) DeleteInstallment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	installmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.installmentService.DeleteInstallment(c.Request.Context(), userID, installmentID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
