// internal/services/envelope_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type EnvelopeService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// EnvelopeView is a party's view of an envelope: full record plus their own
// signing URL and nobody else's.
type EnvelopeView struct {
	models.SignatureEnvelope
	SigningURL string `json:"signing_url,omitempty"`
}

type EnvelopeCallbackRequest struct {
	EnvelopeID string `json:"envelope_id" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=delivered completed declined voided"`
}

func NewEnvelopeService(db *gorm.DB, notifications *NotificationService) *EnvelopeService {
	return &EnvelopeService{
		db:            db,
		notifications: notifications,
	}
}

// ListForUser returns envelopes the user is party to, each carrying only that
// user's signing URL.
func (s *EnvelopeService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]EnvelopeView, int64, error) {
	query := s.db.Model(&models.SignatureEnvelope{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Preload("Listing")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count envelopes: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "status"})
	query = utils.ApplyPagination(query, params)

	var envelopes []models.SignatureEnvelope
	if err := query.Find(&envelopes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch envelopes: %w", err)
	}

	views := make([]EnvelopeView, 0, len(envelopes))
	for _, envelope := range envelopes {
		view := EnvelopeView{SignatureEnvelope: envelope}
		if url, ok := envelope.SigningURLFor(userID); ok {
			view.SigningURL = url
		}
		views = append(views, view)
	}

	return views, total, nil
}

// GetForUser fetches one envelope; authorization happens before any sensitive
// field is read, so non-parties learn nothing beyond "denied".
func (s *EnvelopeService) GetForUser(envelopeID, userID uuid.UUID) (*EnvelopeView, error) {
	var envelope models.SignatureEnvelope
	if err := s.db.Preload("Listing").First(&envelope, envelopeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("signature envelope not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	url, ok := envelope.SigningURLFor(userID)
	if !ok {
		return nil, errors.New("not a party to this envelope")
	}

	return &EnvelopeView{SignatureEnvelope: envelope, SigningURL: url}, nil
}

// HandleCallback applies a status report from the e-signature provider.
// Terminal and completed transitions notify both parties inside the same
// transaction as the status flip.
func (s *EnvelopeService) HandleCallback(req *EnvelopeCallbackRequest) (*models.SignatureEnvelope, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	next := models.EnvelopeStatus(req.Status)

	var envelope models.SignatureEnvelope
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Listing").Where("envelope_id = ?", req.EnvelopeID).First(&envelope).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("signature envelope not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !envelope.CanTransitionTo(next) {
			return fmt.Errorf("cannot move envelope from %s to %s", envelope.Status, next)
		}

		result := tx.Model(&models.SignatureEnvelope{}).
			Where("id = ? AND status = ?", envelope.ID, envelope.Status).
			Update("status", next)
		if result.Error != nil {
			return fmt.Errorf("failed to update envelope: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("envelope status changed concurrently")
		}
		envelope.Status = next

		title, content := envelopeNotification(next, envelope.Listing.Title)
		if title == "" {
			return nil
		}

		if err := s.notifications.Emit(tx, envelope.BuyerID, models.NotificationTypeDocumentReady, title, content, &envelope.ID); err != nil {
			return err
		}
		return s.notifications.Emit(tx, envelope.SellerID, models.NotificationTypeDocumentReady, title, content, &envelope.ID)
	})
	if err != nil {
		return nil, err
	}

	return &envelope, nil
}

func envelopeNotification(status models.EnvelopeStatus, listingTitle string) (string, string) {
	switch status {
	case models.EnvelopeStatusCompleted:
		return "Agreement Signed", fmt.Sprintf("The purchase agreement for %q has been signed by all parties.", listingTitle)
	case models.EnvelopeStatusDeclined:
		return "Agreement Declined", fmt.Sprintf("The purchase agreement for %q was declined.", listingTitle)
	case models.EnvelopeStatusVoided:
		return "Agreement Voided", fmt.Sprintf("The purchase agreement for %q was voided.", listingTitle)
	}
	// Delivery receipts do not change who can act; no notification.
	return "", ""
}
