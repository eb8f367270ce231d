// internal/handlers/kyc.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/igxmarket/igx-backend/internal/i18n"
	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type KYCHandler struct {
	kycService *services.KYCService
}

func NewKYCHandler(kycService *services.KYCService) *KYCHandler {
	return &KYCHandler{
		kycService: kycService,
	}
}

// POST /kyc/documents (multipart)
func (h *KYCHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), err.Error())
		return
	}
	defer file.Close()

	req := services.KYCUploadRequest{
		DocumentType: models.KYCDocumentType(c.PostForm("document_type")),
	}

	document, err := h.kycService.Upload(userID, &req, file, header)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyKYCUploaded),
		"document": document,
	})
}

// GET /kyc/documents
func (h *KYCHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	documents, err := h.kycService.ListForUser(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"documents": documents})
}

// GET /kyc/documents/:id/download
func (h *KYCHandler) Download(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	documentID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	url, err := h.kycService.DownloadURL(documentID, identity)
	if err != nil {
		if errors.Is(err, services.ErrKYCDocumentNotFound) {
			utils.NotFoundResponse(c, "kyc")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url})
}

// GET /admin/kyc/pending
func (h *KYCHandler) ListPending(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	documents, total, err := h.kycService.ListPending(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(documents, total, params))
}

// PUT /admin/kyc/:id/review
func (h *KYCHandler) Review(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	reviewerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	documentID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	var req services.KYCReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	document, err := h.kycService.Review(documentID, reviewerID, &req)
	if err != nil {
		if errors.Is(err, services.ErrKYCDocumentNotFound) {
			utils.NotFoundResponse(c, "kyc")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyKYCReviewed),
		"document": document,
	})
}
