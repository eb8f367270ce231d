// internal/handlers/access_request.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/igxmarket/igx-backend/internal/i18n"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type AccessRequestHandler struct {
	accessService *services.AccessService
}

func NewAccessRequestHandler(accessService *services.AccessService) *AccessRequestHandler {
	return &AccessRequestHandler{
		accessService: accessService,
	}
}

// POST /access-requests
func (h *AccessRequestHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateAccessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.accessService.Create(buyerID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeyAccessRequestCreated),
		"access_request": request,
	})
}

// GET /access-requests/sent
func (h *AccessRequestHandler) Sent(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	requests, total, err := h.accessService.ListForBuyer(buyerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(requests, total, params))
}

// GET /access-requests/received
func (h *AccessRequestHandler) Received(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	requests, total, err := h.accessService.ListForSeller(sellerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(requests, total, params))
}

// PUT /access-requests/:id/approve
func (h *AccessRequestHandler) Approve(c *gin.Context) {
	h.decide(c, true, i18n.KeyAccessRequestApproved)
}

// PUT /access-requests/:id/reject
func (h *AccessRequestHandler) Reject(c *gin.Context) {
	h.decide(c, false, i18n.KeyAccessRequestRejected)
}

func (h *AccessRequestHandler) decide(c *gin.Context, approve bool, messageKey string) {
	lang := utils.GetLangFromContext(c)

	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid access request ID", nil)
		return
	}

	request, err := h.accessService.Decide(requestID, sellerID, approve)
	if err != nil {
		if errors.Is(err, services.ErrAccessRequestNotFound) {
			utils.NotFoundResponse(c, "access_request")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":        i18n.T(lang, messageKey),
		"access_request": request,
	})
}

// POST /access-requests/:id/sign-nda
func (h *AccessRequestHandler) SignNDA(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid access request ID", nil)
		return
	}

	request, err := h.accessService.SignNDA(requestID, buyerID)
	if err != nil {
		if errors.Is(err, services.ErrAccessRequestNotFound) {
			utils.NotFoundResponse(c, "access_request")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeyNDASigned),
		"access_request": request,
	})
}
