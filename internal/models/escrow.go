// internal/models/escrow.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Escrow struct {
	BaseModel
	ListingID             uuid.UUID    `json:"listing_id" gorm:"type:uuid;not null;index"`
	BuyerID               uuid.UUID    `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID              uuid.UUID    `json:"seller_id" gorm:"type:uuid;not null;index"`
	Amount                float64      `json:"amount" gorm:"type:decimal(14,2);not null"`
	Status                EscrowStatus `json:"status" gorm:"type:varchar(20);default:'initiated';index"`
	StripeCustomerID      string       `json:"stripe_customer_id,omitempty" gorm:"size:255"`
	StripePaymentIntentID string       `json:"stripe_payment_intent_id,omitempty" gorm:"size:255"`
	EnvelopeID            *uuid.UUID   `json:"envelope_id" gorm:"type:uuid;index"`
	CompletionDate        *time.Time   `json:"completion_date"`

	// Relationships
	Listing  Listing            `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Buyer    User               `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller   User               `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Envelope *SignatureEnvelope `json:"envelope,omitempty" gorm:"foreignKey:EnvelopeID"`
}

// CanTransitionTo enforces the escrow lifecycle: initiated -> funded ->
// completed, with disputed reachable from initiated or funded and cancelled
// reachable from initiated only. Disputed and cancelled are terminal.
func (e *Escrow) CanTransitionTo(next EscrowStatus) bool {
	switch e.Status {
	case EscrowStatusInitiated:
		return next == EscrowStatusFunded || next == EscrowStatusDisputed || next == EscrowStatusCancelled
	case EscrowStatusFunded:
		return next == EscrowStatusCompleted || next == EscrowStatusDisputed
	}
	return false
}

// StripeCustomer maps a platform user to their payment-provider customer
// record so checkout sessions reuse the same customer.
type StripeCustomer struct {
	BaseModel
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	StripeCustomerID string    `json:"stripe_customer_id" gorm:"size:255;not null"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
