// internal/services/escrow_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/config"
	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

// EscrowService mediates the cross-party transitions whose preconditions span
// multiple tables: payment initiation, agreement creation, and fund release.
type EscrowService struct {
	db            *gorm.DB
	config        *config.Config
	payments      PaymentProvider
	signatures    SignatureProvider
	notifications *NotificationService
}

type InitiatePaymentRequest struct {
	ListingID uuid.UUID `json:"listing_id" validate:"required"`
	SellerID  uuid.UUID `json:"seller_id" validate:"required"`
	BuyerID   uuid.UUID `json:"buyer_id" validate:"required"`
	Amount    float64   `json:"amount" validate:"required,gt=0"`
}

type InitiatePaymentResponse struct {
	URL      string    `json:"url"`
	EscrowID uuid.UUID `json:"escrow_id"`
}

type CreateAgreementRequest struct {
	ListingID uuid.UUID `json:"listing_id" validate:"required"`
	BuyerID   uuid.UUID `json:"buyer_id" validate:"required"`
}

var (
	ErrEscrowNotFound      = errors.New("escrow transaction not found")
	ErrAgreementNotSigned  = errors.New("purchase agreement must be signed before releasing funds")
	ErrEscrowAlreadyClosed = errors.New("escrow transaction already closed")
)

func NewEscrowService(db *gorm.DB, cfg *config.Config, payments PaymentProvider, signatures SignatureProvider, notifications *NotificationService) *EscrowService {
	return &EscrowService{
		db:            db,
		config:        cfg,
		payments:      payments,
		signatures:    signatures,
		notifications: notifications,
	}
}

// InitiatePayment creates the escrow record first and only then asks the
// payment provider for a checkout session. A provider failure leaves an
// `initiated` escrow behind on purpose: it is inspectable and retryable,
// never an orphaned payment.
func (s *EscrowService) InitiatePayment(req *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var listing models.Listing
	if err := s.db.First(&listing, req.ListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("listing not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var buyer models.User
	if err := s.db.First(&buyer, req.BuyerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("buyer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.SellerID != req.SellerID {
		return nil, errors.New("seller does not own this listing")
	}
	if req.BuyerID == req.SellerID {
		return nil, errors.New("buyer and seller must be different users")
	}

	customerID, err := s.ensureCustomer(&buyer)
	if err != nil {
		return nil, err
	}

	escrow := &models.Escrow{
		ListingID:        req.ListingID,
		BuyerID:          req.BuyerID,
		SellerID:         req.SellerID,
		Amount:           req.Amount,
		Status:           models.EscrowStatusInitiated,
		StripeCustomerID: customerID,
	}
	if err := s.db.Create(escrow).Error; err != nil {
		return nil, fmt.Errorf("failed to create escrow: %w", err)
	}

	successURL := fmt.Sprintf("%s/transactions?session_id={CHECKOUT_SESSION_ID}", s.config.Frontend.BaseURL)
	cancelURL := fmt.Sprintf("%s/browse", s.config.Frontend.BaseURL)
	metadata := map[string]string{
		"escrow_id":  escrow.ID.String(),
		"listing_id": req.ListingID.String(),
	}

	session, err := s.payments.CreateCheckoutSession(customerID, req.Amount, "iGaming Asset Purchase", metadata, successURL, cancelURL)
	if err != nil {
		// The initiated escrow is left in place; the caller retries or cancels.
		return nil, err
	}

	if session.PaymentIntentID != "" {
		if err := s.db.Model(escrow).Update("stripe_payment_intent_id", session.PaymentIntentID).Error; err != nil {
			return nil, fmt.Errorf("failed to record payment reference: %w", err)
		}
	}

	return &InitiatePaymentResponse{
		URL:      session.URL,
		EscrowID: escrow.ID,
	}, nil
}

// CreateAgreement synthesizes a signature envelope for the listing's purchase
// agreement. The envelope row is durably created before the notifications
// referencing it, inside one transaction.
func (s *EscrowService) CreateAgreement(req *CreateAgreementRequest) (*models.SignatureEnvelope, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var listing models.Listing
	if err := s.db.Preload("Seller").First(&listing, req.ListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("listing or buyer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var buyer models.User
	if err := s.db.First(&buyer, req.BuyerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("listing or buyer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	details, err := s.signatures.CreateEnvelope(&listing, &buyer, &listing.Seller)
	if err != nil {
		return nil, err
	}

	envelope := &models.SignatureEnvelope{
		EnvelopeID:       details.EnvelopeID,
		ListingID:        listing.ID,
		BuyerID:          buyer.ID,
		SellerID:         listing.SellerID,
		Status:           models.EnvelopeStatusSent,
		DocumentType:     details.DocumentType,
		SigningURLBuyer:  details.SigningURLBuyer,
		SigningURLSeller: details.SigningURLSeller,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(envelope).Error; err != nil {
			return fmt.Errorf("failed to create envelope: %w", err)
		}

		// Link open escrows for this listing/buyer pair to the agreement.
		if err := tx.Model(&models.Escrow{}).
			Where("listing_id = ? AND buyer_id = ? AND envelope_id IS NULL AND status IN ?",
				listing.ID, buyer.ID,
				[]models.EscrowStatus{models.EscrowStatusInitiated, models.EscrowStatusFunded}).
			Update("envelope_id", envelope.ID).Error; err != nil {
			return fmt.Errorf("failed to link escrow to agreement: %w", err)
		}

		content := fmt.Sprintf("Purchase agreement for %q is ready for your signature.", listing.Title)
		if err := s.notifications.Emit(tx, buyer.ID, models.NotificationTypeDocumentReady, "Document Ready for Signing", content, &envelope.ID); err != nil {
			return err
		}
		return s.notifications.Emit(tx, listing.SellerID, models.NotificationTypeDocumentReady, "Document Ready for Signing", content, &envelope.ID)
	})
	if err != nil {
		return nil, err
	}

	return envelope, nil
}

// CompleteEscrow releases the funds held for an escrow. Preconditions are
// checked in order and short-circuit: the escrow must exist, and its linked
// agreement must exist and be completed. The status flip is a conditional
// update so concurrent invocations cannot both win or duplicate the
// notification pair.
func (s *EscrowService) CompleteEscrow(escrowID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var escrow models.Escrow
		if err := tx.Preload("Listing").First(&escrow, escrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEscrowNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if escrow.EnvelopeID == nil {
			return ErrAgreementNotSigned
		}

		var envelope models.SignatureEnvelope
		if err := tx.First(&envelope, *escrow.EnvelopeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAgreementNotSigned
			}
			return fmt.Errorf("database error: %w", err)
		}

		if envelope.Status != models.EnvelopeStatusCompleted {
			return ErrAgreementNotSigned
		}

		now := time.Now()
		result := tx.Model(&models.Escrow{}).
			Where("id = ? AND status NOT IN ?", escrowID,
				[]models.EscrowStatus{models.EscrowStatusCompleted, models.EscrowStatusDisputed, models.EscrowStatusCancelled}).
			Updates(map[string]interface{}{
				"status":          models.EscrowStatusCompleted,
				"completion_date": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update escrow: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Another invocation already closed this escrow.
			return ErrEscrowAlreadyClosed
		}

		if err := s.payments.ReleaseFunds(escrow.StripePaymentIntentID, escrow.Amount); err != nil {
			return err
		}

		if err := s.notifications.Emit(tx, escrow.BuyerID, models.NotificationTypeTransactionCompleted,
			"Transaction Completed",
			"Your purchase has been completed and funds have been released.",
			&escrow.ID); err != nil {
			return err
		}
		return s.notifications.Emit(tx, escrow.SellerID, models.NotificationTypeTransactionCompleted,
			"Payment Received",
			"Funds have been released from escrow to your account.",
			&escrow.ID)
	})
}

// MarkFunded records the payment provider's confirmation that the buyer paid.
func (s *EscrowService) MarkFunded(escrowID uuid.UUID) error {
	return s.transition(escrowID, models.EscrowStatusFunded,
		"Escrow Funded", "Escrow funds have been received and are held in custody.")
}

// Dispute moves an open escrow into the terminal disputed state.
func (s *EscrowService) Dispute(escrowID uuid.UUID) error {
	return s.transition(escrowID, models.EscrowStatusDisputed,
		"Escrow Disputed", "The escrow transaction has been placed in dispute.")
}

// Cancel voids an escrow that has not yet been funded.
func (s *EscrowService) Cancel(escrowID uuid.UUID) error {
	return s.transition(escrowID, models.EscrowStatusCancelled,
		"Escrow Cancelled", "The escrow transaction has been cancelled.")
}

func (s *EscrowService) transition(escrowID uuid.UUID, next models.EscrowStatus, title, content string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var escrow models.Escrow
		if err := tx.First(&escrow, escrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEscrowNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !escrow.CanTransitionTo(next) {
			return fmt.Errorf("cannot move escrow from %s to %s", escrow.Status, next)
		}

		// Guard against a lost update racing this read.
		result := tx.Model(&models.Escrow{}).
			Where("id = ? AND status = ?", escrowID, escrow.Status).
			Update("status", next)
		if result.Error != nil {
			return fmt.Errorf("failed to update escrow: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrEscrowAlreadyClosed
		}

		if err := s.notifications.Emit(tx, escrow.BuyerID, models.NotificationTypeEscrowUpdated, title, content, &escrow.ID); err != nil {
			return err
		}
		return s.notifications.Emit(tx, escrow.SellerID, models.NotificationTypeEscrowUpdated, title, content, &escrow.ID)
	})
}

// ListForUser returns escrows where the user is buyer or seller.
func (s *EscrowService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Escrow, int64, error) {
	query := s.db.Model(&models.Escrow{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Preload("Listing").Preload("Envelope")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count escrows: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var escrows []models.Escrow
	if err := query.Find(&escrows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch escrows: %w", err)
	}

	return escrows, total, nil
}

// GetForUser fetches one escrow the user is party to.
func (s *EscrowService) GetForUser(escrowID, userID uuid.UUID) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := s.db.Preload("Listing").Preload("Envelope").First(&escrow, escrowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEscrowNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if escrow.BuyerID != userID && escrow.SellerID != userID {
		return nil, errors.New("not a party to this escrow")
	}

	return &escrow, nil
}

func (s *EscrowService) ensureCustomer(buyer *models.User) (string, error) {
	var existing models.StripeCustomer
	err := s.db.Where("user_id = ?", buyer.ID).First(&existing).Error
	if err == nil {
		return existing.StripeCustomerID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("database error: %w", err)
	}

	customerID, err := s.payments.CreateCustomer(buyer.Email, buyer.FullName())
	if err != nil {
		return "", err
	}

	record := &models.StripeCustomer{
		UserID:           buyer.ID,
		StripeCustomerID: customerID,
	}
	if err := s.db.Create(record).Error; err != nil {
		// The provider-side customer exists; losing the mapping only costs a
		// duplicate customer on retry.
		logrus.WithError(err).Warn("Failed to persist stripe customer mapping")
	}

	return customerID, nil
}
