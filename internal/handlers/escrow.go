// internal/handlers/escrow.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/igxmarket/igx-backend/internal/i18n"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type EscrowHandler struct {
	escrowService *services.EscrowService
}

func NewEscrowHandler(escrowService *services.EscrowService) *EscrowHandler {
	return &EscrowHandler{
		escrowService: escrowService,
	}
}

// POST /escrow/initiate-payment
func (h *EscrowHandler) InitiatePayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// The buyer is the caller; the body cannot initiate on someone's behalf.
	req.BuyerID = buyerID

	response, err := h.escrowService.InitiatePayment(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, response)
}

// POST /escrow/create-agreement
func (h *EscrowHandler) CreateAgreement(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	req.BuyerID = buyerID

	envelope, err := h.escrowService.CreateAgreement(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyEnvelopeCreated),
		"envelope": envelope,
	})
}

// POST /escrow/:id/complete
func (h *EscrowHandler) Complete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	escrowID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid escrow ID", nil)
		return
	}

	// Party check happens before the transition runs.
	if _, err := h.escrowService.GetForUser(escrowID, userID); err != nil {
		if errors.Is(err, services.ErrEscrowNotFound) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.ForbiddenResponse(c, err.Error())
		return
	}

	if err := h.escrowService.CompleteEscrow(escrowID); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyEscrowCompleted)})
}

// GET /escrow
func (h *EscrowHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	escrows, total, err := h.escrowService.ListForUser(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(escrows, total, params))
}

// GET /escrow/:id
func (h *EscrowHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	escrowID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid escrow ID", nil)
		return
	}

	escrow, err := h.escrowService.GetForUser(escrowID, userID)
	if err != nil {
		if errors.Is(err, services.ErrEscrowNotFound) {
			utils.NotFoundResponse(c, "escrow")
			return
		}
		utils.ForbiddenResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"escrow": escrow})
}

// PUT /admin/escrows/:id/mark-funded
func (h *EscrowHandler) MarkFunded(c *gin.Context) {
	h.adminTransition(c, h.escrowService.MarkFunded)
}

// PUT /admin/escrows/:id/dispute
func (h *EscrowHandler) Dispute(c *gin.Context) {
	h.adminTransition(c, h.escrowService.Dispute)
}

// PUT /admin/escrows/:id/cancel
func (h *EscrowHandler) Cancel(c *gin.Context) {
	h.adminTransition(c, h.escrowService.Cancel)
}

func (h *EscrowHandler) adminTransition(c *gin.Context, fn func(escrowID uuid.UUID) error) {
	lang := utils.GetLangFromContext(c)

	escrowID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid escrow ID", nil)
		return
	}

	if err := fn(escrowID); err != nil {
		if errors.Is(err, services.ErrEscrowNotFound) {
			utils.NotFoundResponse(c, "escrow")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyEscrowUpdated)})
}
