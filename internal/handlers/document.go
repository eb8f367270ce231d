// internal/handlers/document.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/igxmarket/igx-backend/internal/i18n"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// POST /listings/:id/documents (multipart)
func (h *DocumentHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	uploaderID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	listingID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "file"), err.Error())
		return
	}
	defer file.Close()

	isPublic := c.PostForm("is_public") == "true"

	document, err := h.documentService.Upload(listingID, uploaderID, isPublic, file, header)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			utils.NotFoundResponse(c, "listing")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyDocumentUploaded),
		"document": document,
	})
}

// GET /listings/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	listingID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	documents, err := h.documentService.List(listingID, currentIdentity(c))
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			utils.NotFoundResponse(c, "listing")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"documents": documents})
}

// GET /documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
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

	url, err := h.documentService.DownloadURL(documentID, identity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			utils.NotFoundResponse(c, "document")
		case errors.Is(err, services.ErrDataRoomLocked):
			utils.ForbiddenResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url})
}

// DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	documentID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	if err := h.documentService.Delete(documentID, sellerID); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			utils.NotFoundResponse(c, "document")
			return
		}
		utils.ForbiddenResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Document deleted"})
}
