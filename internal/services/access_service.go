// internal/services/access_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type AccessService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type CreateAccessRequestRequest struct {
	ListingID uuid.UUID `json:"listing_id" validate:"required"`
	Message   string    `json:"message,omitempty"`
}

var (
	ErrAccessRequestNotFound = errors.New("access request not found")
	ErrNDARequiresApproval   = errors.New("NDA can only be signed on an approved access request")
)

func NewAccessService(db *gorm.DB, notifications *NotificationService) *AccessService {
	return &AccessService{
		db:            db,
		notifications: notifications,
	}
}

// Create files a buyer's request to view a listing's private data.
func (s *AccessService) Create(buyerID uuid.UUID, req *CreateAccessRequestRequest) (*models.AccessRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var listing models.Listing
	if err := s.db.Preload("Seller").First(&listing, req.ListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("listing not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.SellerID == buyerID {
		return nil, errors.New("cannot request access to your own listing")
	}

	var existing models.AccessRequest
	err := s.db.Where("listing_id = ? AND buyer_id = ? AND status IN ?",
		req.ListingID, buyerID,
		[]models.AccessRequestStatus{models.AccessRequestStatusPending, models.AccessRequestStatusApproved}).
		First(&existing).Error
	if err == nil {
		if existing.Status == models.AccessRequestStatusApproved {
			return nil, errors.New("you already have access to this listing")
		}
		return nil, errors.New("you already have a pending request for this listing")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var buyer models.User
	if err := s.db.First(&buyer, buyerID).Error; err != nil {
		return nil, fmt.Errorf("buyer not found: %w", err)
	}

	request := &models.AccessRequest{
		ListingID: req.ListingID,
		BuyerID:   buyerID,
		Message:   req.Message,
		Status:    models.AccessRequestStatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create access request: %w", err)
		}

		content := fmt.Sprintf("%s has requested access to %q.", buyer.FullName(), listing.Title)
		return s.notifications.Emit(tx, listing.SellerID, models.NotificationTypeAccessRequest,
			"New Access Request", content, &request.ID)
	})
	if err != nil {
		return nil, err
	}

	// Email delivery is best-effort; the in-app notification is the contract.
	go func() {
		if err := s.notifications.SendAccessRequestEmail(&listing.Seller, &buyer, &listing); err != nil {
			logrus.WithError(err).Warn("Failed to send access request email")
		}
	}()

	return request, nil
}

// Decide approves or rejects a pending request. Only the listing's seller may
// decide, and the decision is terminal.
func (s *AccessService) Decide(requestID, sellerID uuid.UUID, approve bool) (*models.AccessRequest, error) {
	var request models.AccessRequest
	if err := s.db.Preload("Listing").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessRequestNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if request.Listing.SellerID != sellerID {
		return nil, errors.New("only the listing owner can decide access requests")
	}

	if request.Status != models.AccessRequestStatusPending {
		return nil, errors.New("access request already decided")
	}

	next := models.AccessRequestStatusRejected
	title := "Access Request Rejected"
	content := fmt.Sprintf("Your request to access %q was rejected.", request.Listing.Title)
	if approve {
		next = models.AccessRequestStatusApproved
		title = "Access Request Approved"
		content = fmt.Sprintf("Your request to access %q was approved. Sign the NDA to unlock the data room.", request.Listing.Title)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AccessRequest{}).
			Where("id = ? AND status = ?", requestID, models.AccessRequestStatusPending).
			Update("status", next)
		if result.Error != nil {
			return fmt.Errorf("failed to update access request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("access request already decided")
		}

		return s.notifications.Emit(tx, request.BuyerID, models.NotificationTypeAccessRequest, title, content, &request.ID)
	})
	if err != nil {
		return nil, err
	}

	request.Status = next
	return &request, nil
}

// SignNDA records the buyer's NDA signature. Only valid once the request is
// approved; signing twice is a no-op.
func (s *AccessService) SignNDA(requestID, buyerID uuid.UUID) (*models.AccessRequest, error) {
	var request models.AccessRequest
	if err := s.db.Preload("Listing").Preload("Buyer").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessRequestNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if request.BuyerID != buyerID {
		return nil, errors.New("only the requesting buyer can sign the NDA")
	}

	if request.Status != models.AccessRequestStatusApproved {
		return nil, ErrNDARequiresApproval
	}

	if request.NDASigned {
		return &request, nil
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AccessRequest{}).
			Where("id = ? AND nda_signed = ?", requestID, false).
			Updates(map[string]interface{}{
				"nda_signed":    true,
				"nda_signed_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to record NDA signature: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Signed concurrently; idempotent.
			return nil
		}

		content := fmt.Sprintf("%s signed the NDA for %q.", request.Buyer.FullName(), request.Listing.Title)
		return s.notifications.Emit(tx, request.Listing.SellerID, models.NotificationTypeNDASigned,
			"NDA Signed", content, &request.ID)
	})
	if err != nil {
		return nil, err
	}

	request.NDASigned = true
	request.NDASignedAt = &now
	return &request, nil
}

// ListForBuyer returns the buyer's own requests, newest first.
func (s *AccessService) ListForBuyer(buyerID uuid.UUID, params utils.PaginationParams) ([]models.AccessRequest, int64, error) {
	return s.list(s.db.Model(&models.AccessRequest{}).Where("buyer_id = ?", buyerID).Preload("Listing"), params)
}

// ListForSeller returns requests against the seller's listings.
func (s *AccessService) ListForSeller(sellerID uuid.UUID, params utils.PaginationParams) ([]models.AccessRequest, int64, error) {
	query := s.db.Model(&models.AccessRequest{}).
		Joins("JOIN listings ON listings.id = access_requests.listing_id").
		Where("listings.seller_id = ?", sellerID).
		Preload("Listing").Preload("Buyer")
	return s.list(query, params)
}

func (s *AccessService) list(query *gorm.DB, params utils.PaginationParams) ([]models.AccessRequest, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count access requests: %w", err)
	}

	var requests []models.AccessRequest
	if err := query.Order("access_requests.created_at DESC").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch access requests: %w", err)
	}

	return requests, total, nil
}

// HasDataRoomAccess reports whether the buyer holds an approved, NDA-signed
// request for the listing.
func (s *AccessService) HasDataRoomAccess(listingID, buyerID uuid.UUID) (bool, error) {
	var request models.AccessRequest
	err := s.db.Where("listing_id = ? AND buyer_id = ? AND status = ? AND nda_signed = ?",
		listingID, buyerID, models.AccessRequestStatusApproved, true).
		First(&request).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("database error: %w", err)
}
