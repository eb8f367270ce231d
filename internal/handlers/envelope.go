// internal/handlers/envelope.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/igxmarket/igx-backend/internal/config"
	"github.com/igxmarket/igx-backend/internal/i18n"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type EnvelopeHandler struct {
	envelopeService *services.EnvelopeService
	config          *config.Config
}

func NewEnvelopeHandler(envelopeService *services.EnvelopeService, cfg *config.Config) *EnvelopeHandler {
	return &EnvelopeHandler{
		envelopeService: envelopeService,
		config:          cfg,
	}
}

// GET /envelopes
func (h *EnvelopeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	envelopes, total, err := h.envelopeService.ListForUser(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(envelopes, total, params))
}

// GET /envelopes/:id
func (h *EnvelopeHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	envelopeID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid envelope ID", nil)
		return
	}

	envelope, err := h.envelopeService.GetForUser(envelopeID, userID)
	if err != nil {
		utils.NotFoundResponse(c, "envelope")
		return
	}

	utils.SuccessResponse(c, gin.H{"envelope": envelope})
}

// POST /webhooks/signature
// The provider authenticates with a shared secret, not a user token.
func (h *EnvelopeHandler) Callback(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	secret := c.GetHeader("X-Callback-Token")
	if h.config.DocuSign.SecretKey == "" || !utils.SecureCompare(secret, h.config.DocuSign.SecretKey) {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.EnvelopeCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	envelope, err := h.envelopeService.HandleCallback(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"envelope": envelope})
}
