// internal/services/listing_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type ListingService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type CreateListingRequest struct {
	Title           string   `json:"title" validate:"required,min=3,max=255"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price" validate:"omitempty,gte=0"`
	RevenueMonthly  float64  `json:"revenue_monthly" validate:"omitempty,gte=0"`
	RevenueAnnual   float64  `json:"revenue_annual" validate:"omitempty,gte=0"`
	Category        string   `json:"category,omitempty"`
	Country         string   `json:"country,omitempty"`
	LicenseType     string   `json:"license_type,omitempty"`
	Tags            []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	IsPublic        bool     `json:"is_public"`
	SubmitForReview bool     `json:"submit_for_review"`
}

type UpdateListingRequest struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description    *string  `json:"description,omitempty"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	RevenueMonthly *float64 `json:"revenue_monthly,omitempty" validate:"omitempty,gte=0"`
	RevenueAnnual  *float64 `json:"revenue_annual,omitempty" validate:"omitempty,gte=0"`
	Category       *string  `json:"category,omitempty"`
	Country        *string  `json:"country,omitempty"`
	LicenseType    *string  `json:"license_type,omitempty"`
	Tags           []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	IsPublic       *bool    `json:"is_public,omitempty"`
}

type ListingSearchParams struct {
	utils.PaginationParams
	Country     string
	LicenseType string
	MinPrice    float64
	MaxPrice    float64
}

var ErrListingNotFound = errors.New("listing not found")

func NewListingService(db *gorm.DB, notifications *NotificationService) *ListingService {
	return &ListingService{
		db:            db,
		notifications: notifications,
	}
}

func (s *ListingService) Create(sellerID uuid.UUID, req *CreateListingRequest) (*models.Listing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	status := models.ListingStatusDraft
	if req.SubmitForReview {
		status = models.ListingStatusPending
	}

	listing := &models.Listing{
		SellerID:       sellerID,
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		RevenueMonthly: req.RevenueMonthly,
		RevenueAnnual:  req.RevenueAnnual,
		Category:       req.Category,
		Country:        req.Country,
		LicenseType:    req.LicenseType,
		Tags:           pq.StringArray(req.Tags),
		IsPublic:       req.IsPublic,
		Status:         status,
	}

	if err := s.db.Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	return listing, nil
}

func (s *ListingService) Update(listingID, sellerID uuid.UUID, req *UpdateListingRequest) (*models.Listing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var listing models.Listing
	if err := s.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.SellerID != sellerID {
		return nil, errors.New("only the listing owner can update it")
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.RevenueMonthly != nil {
		updates["revenue_monthly"] = *req.RevenueMonthly
	}
	if req.RevenueAnnual != nil {
		updates["revenue_annual"] = *req.RevenueAnnual
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.LicenseType != nil {
		updates["license_type"] = *req.LicenseType
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) > 0 {
		if err := s.db.Model(&listing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update listing: %w", err)
		}
	}

	return &listing, nil
}

func (s *ListingService) Delete(listingID, sellerID uuid.UUID) error {
	var listing models.Listing
	if err := s.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if listing.SellerID != sellerID {
		return errors.New("only the listing owner can delete it")
	}

	return s.db.Delete(&listing).Error
}

// Get fetches one listing for the given viewer. Public browse visibility
// requires approved AND public; the owner and admins always see their rows.
// Each visible read increments the view counter.
func (s *ListingService) Get(listingID uuid.UUID, viewer *Identity) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.Preload("Seller").First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !listing.Browsable() {
		if viewer == nil {
			return nil, ErrListingNotFound
		}
		if listing.SellerID != viewer.UserID && !viewer.IsAdmin() {
			return nil, ErrListingNotFound
		}
		return &listing, nil
	}

	// Atomic counter bump; stale reads of Views are acceptable.
	if err := s.db.Model(&listing).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return nil, fmt.Errorf("failed to increment views: %w", err)
	}
	listing.Views++

	return &listing, nil
}

// Browse lists listings visible to everyone: status approved AND public.
func (s *ListingService) Browse(params ListingSearchParams) ([]models.Listing, int64, error) {
	query := s.db.Model(&models.Listing{}).
		Where("status = ? AND is_public = ?", models.ListingStatusApproved, true).
		Preload("Seller")

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Country != "" {
		query = query.Where("country = ?", params.Country)
	}
	if params.LicenseType != "" {
		query = query.Where("license_type = ?", params.LicenseType)
	}
	if params.MinPrice > 0 {
		query = query.Where("price >= ?", params.MinPrice)
	}
	if params.MaxPrice > 0 {
		query = query.Where("price <= ?", params.MaxPrice)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "views", "revenue_monthly"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var listings []models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

// ListForSeller returns the seller's own listings in every status.
func (s *ListingService) ListForSeller(sellerID uuid.UUID, params utils.PaginationParams) ([]models.Listing, int64, error) {
	query := s.db.Model(&models.Listing{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "status", "price"})
	query = utils.ApplyPagination(query, params)

	var listings []models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

// Submit moves a draft into the review queue.
func (s *ListingService) Submit(listingID, sellerID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.SellerID != sellerID {
		return nil, errors.New("only the listing owner can submit it")
	}
	if listing.Status != models.ListingStatusDraft {
		return nil, fmt.Errorf("cannot submit a listing in status %s", listing.Status)
	}

	if err := s.db.Model(&listing).Update("status", models.ListingStatusPending).Error; err != nil {
		return nil, fmt.Errorf("failed to submit listing: %w", err)
	}
	listing.Status = models.ListingStatusPending

	return &listing, nil
}

// Review is the moderation decision on a pending listing. Approval makes the
// listing eligible for public browse; either outcome notifies the seller.
func (s *ListingService) Review(listingID uuid.UUID, approve bool) (*models.Listing, error) {
	var listing models.Listing

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if listing.Status != models.ListingStatusPending {
			return fmt.Errorf("cannot review a listing in status %s", listing.Status)
		}

		newStatus := models.ListingStatusApproved
		notifType := models.NotificationTypeListingApproved
		title := "Listing Approved"
		content := fmt.Sprintf("Your listing %q has been approved and is now visible to buyers.", listing.Title)
		if !approve {
			newStatus = models.ListingStatusRejected
			notifType = models.NotificationTypeListingRejected
			title = "Listing Rejected"
			content = fmt.Sprintf("Your listing %q was rejected. Please review our guidelines and resubmit.", listing.Title)
		}

		result := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", listingID, models.ListingStatusPending).
			Update("status", newStatus)
		if result.Error != nil {
			return fmt.Errorf("failed to update listing: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("cannot review a listing in status %s", listing.Status)
		}
		listing.Status = newStatus

		return s.notifications.Emit(tx, listing.SellerID, notifType, title, content, &listing.ID)
	})
	if err != nil {
		return nil, err
	}

	return &listing, nil
}

// MarkSold records a completed sale; driven by the escrow completing.
func (s *ListingService) MarkSold(listingID uuid.UUID) error {
	result := s.db.Model(&models.Listing{}).
		Where("id = ? AND status IN ?", listingID,
			[]models.ListingStatus{models.ListingStatusApproved, models.ListingStatusLive}).
		Update("status", models.ListingStatusSold)
	if result.Error != nil {
		return fmt.Errorf("failed to mark listing sold: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("listing is not in a sellable status")
	}
	return nil
}
