// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalUsers        int64   `json:"total_users"`
	VerifiedUsers     int64   `json:"verified_users"`
	TotalListings     int64   `json:"total_listings"`
	PendingListings   int64   `json:"pending_listings"`
	LiveListings      int64   `json:"live_listings"`
	PendingKYC        int64   `json:"pending_kyc"`
	OpenEscrows       int64   `json:"open_escrows"`
	CompletedEscrows  int64   `json:"completed_escrows"`
	DisputedEscrows   int64   `json:"disputed_escrows"`
	EscrowVolume      float64 `json:"escrow_volume"`
	PendingAccessReqs int64   `json:"pending_access_requests"`
}

type UpdateUserRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=buyer seller admin"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}

	type countQuery struct {
		dest  *int64
		model interface{}
		where string
		args  []interface{}
	}

	queries := []countQuery{
		{&stats.TotalUsers, &models.User{}, "", nil},
		{&stats.VerifiedUsers, &models.User{}, "is_verified = ?", []interface{}{true}},
		{&stats.TotalListings, &models.Listing{}, "", nil},
		{&stats.PendingListings, &models.Listing{}, "status = ?", []interface{}{models.ListingStatusPending}},
		{&stats.LiveListings, &models.Listing{}, "status = ? AND is_public = ?", []interface{}{models.ListingStatusApproved, true}},
		{&stats.PendingKYC, &models.KYCDocument{}, "status = ?", []interface{}{models.KYCReviewStatusPending}},
		{&stats.OpenEscrows, &models.Escrow{}, "status IN ?", []interface{}{[]models.EscrowStatus{models.EscrowStatusInitiated, models.EscrowStatusFunded}}},
		{&stats.CompletedEscrows, &models.Escrow{}, "status = ?", []interface{}{models.EscrowStatusCompleted}},
		{&stats.DisputedEscrows, &models.Escrow{}, "status = ?", []interface{}{models.EscrowStatusDisputed}},
		{&stats.PendingAccessReqs, &models.AccessRequest{}, "status = ?", []interface{}{models.AccessRequestStatusPending}},
	}

	for _, q := range queries {
		query := s.db.Model(q.model)
		if q.where != "" {
			query = query.Where(q.where, q.args...)
		}
		if err := query.Count(q.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
		}
	}

	row := s.db.Model(&models.Escrow{}).
		Where("status = ?", models.EscrowStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Row()
	if err := row.Scan(&stats.EscrowVolume); err != nil {
		return nil, fmt.Errorf("failed to load escrow volume: %w", err)
	}

	return stats, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", search, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "email", "kyc_level"})
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// ListPendingListings is the moderation queue, oldest submissions first.
func (s *AdminService) ListPendingListings(params utils.PaginationParams) ([]models.Listing, int64, error) {
	query := s.db.Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusPending).
		Preload("Seller")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	query = query.Order("created_at ASC")
	query = utils.ApplyPagination(query, params)

	var listings []models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

func (s *AdminService) ListEscrows(params utils.PaginationParams, status models.EscrowStatus) ([]models.Escrow, int64, error) {
	query := s.db.Model(&models.Escrow{}).
		Preload("Listing").
		Preload("Buyer").
		Preload("Seller")

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count escrows: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount", "status"})
	query = utils.ApplyPagination(query, params)

	var escrows []models.Escrow
	if err := query.Find(&escrows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch escrows: %w", err)
	}

	return escrows, total, nil
}

// UpdateUserRoles replaces a user's role set. Admin grants go through here.
func (s *AdminService) UpdateUserRoles(userID uuid.UUID, req *UpdateUserRolesRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	roles := make(models.RoleList, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, models.UserRole(role))
	}

	if err := s.db.Model(&user).Update("roles", roles).Error; err != nil {
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}
	user.Roles = roles

	return &user, nil
}

// SetUserVerified toggles the manual verification flag without touching the
// document-driven KYC level.
func (s *AdminService) SetUserVerified(userID uuid.UUID, verified bool) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&user).Update("is_verified", verified).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user.IsVerified = verified

	return &user, nil
}

func (s *AdminService) ListAuditLogs(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}
