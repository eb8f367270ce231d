// internal/models/envelope.go
package models

import (
	"github.com/google/uuid"
)

// SignatureEnvelope tracks a purchase-agreement e-signature bundle. The
// provider reference id lives in EnvelopeID; status transitions past `sent`
// are driven by the provider's callback.
type SignatureEnvelope struct {
	BaseModel
	EnvelopeID       string         `json:"envelope_id" gorm:"size:255;not null;uniqueIndex"`
	ListingID        uuid.UUID      `json:"listing_id" gorm:"type:uuid;not null;index"`
	BuyerID          uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Status           EnvelopeStatus `json:"status" gorm:"type:varchar(20);default:'sent';index"`
	DocumentType     string         `json:"document_type" gorm:"size:100;default:'purchase_agreement'"`
	SigningURLBuyer  string         `json:"-" gorm:"size:512"`
	SigningURLSeller string         `json:"-" gorm:"size:512"`

	// Relationships
	Listing Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

// CanTransitionTo enforces the envelope lifecycle: sent -> delivered ->
// completed, with declined and voided terminal escapes from either live state.
func (e *SignatureEnvelope) CanTransitionTo(next EnvelopeStatus) bool {
	switch e.Status {
	case EnvelopeStatusSent:
		return next == EnvelopeStatusDelivered || next == EnvelopeStatusDeclined ||
			next == EnvelopeStatusVoided
	case EnvelopeStatusDelivered:
		return next == EnvelopeStatusCompleted || next == EnvelopeStatusDeclined ||
			next == EnvelopeStatusVoided
	}
	return false
}

// SigningURLFor returns the signing link for the given party only. Non-party
// users never see either URL.
func (e *SignatureEnvelope) SigningURLFor(userID uuid.UUID) (string, bool) {
	switch userID {
	case e.BuyerID:
		return e.SigningURLBuyer, true
	case e.SellerID:
		return e.SigningURLSeller, true
	}
	return "", false
}
