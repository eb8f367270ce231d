// internal/handlers/admin.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/igxmarket/igx-backend/internal/i18n"
	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	listingService *services.ListingService
}

func NewAdminHandler(adminService *services.AdminService, listingService *services.ListingService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		listingService: listingService,
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.adminService.Dashboard()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	users, total, err := h.adminService.ListUsers(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// PUT /admin/users/:id/roles
func (h *AdminHandler) UpdateUserRoles(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.UpdateUserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	user, err := h.adminService.UpdateUserRoles(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.NotFoundResponse(c, "user")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /admin/users/:id/verify
func (h *AdminHandler) SetUserVerified(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req struct {
		Verified bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	user, err := h.adminService.SetUserVerified(userID, req.Verified)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.NotFoundResponse(c, "user")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserVerified),
		"user":    user,
	})
}

// GET /admin/listings/pending
func (h *AdminHandler) PendingListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	listings, total, err := h.adminService.ListPendingListings(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(listings, total, params))
}

// PUT /admin/listings/:id/approve
func (h *AdminHandler) ApproveListing(c *gin.Context) {
	h.reviewListing(c, true, i18n.KeyListingApproved)
}

// PUT /admin/listings/:id/reject
func (h *AdminHandler) RejectListing(c *gin.Context) {
	h.reviewListing(c, false, i18n.KeyListingRejected)
}

func (h *AdminHandler) reviewListing(c *gin.Context, approve bool, messageKey string) {
	lang := utils.GetLangFromContext(c)

	listingID, ok := pathUUID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	listing, err := h.listingService.Review(listingID, approve)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			utils.NotFoundResponse(c, "listing")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"listing": listing,
	})
}

// GET /admin/escrows
func (h *AdminHandler) ListEscrows(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.EscrowStatus(c.Query("status"))

	escrows, total, err := h.adminService.ListEscrows(params, status)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(escrows, total, params))
}

// GET /admin/audit-logs
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	logs, total, err := h.adminService.ListAuditLogs(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
