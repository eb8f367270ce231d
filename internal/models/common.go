// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the primary key so inserts work on databases without a
// uuid default (the test databases are sqlite).
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Enums
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

// RoleList is the set of roles granted to a user. Stored as a JSON-encoded
// text column so the same model works against postgres and sqlite.
type RoleList []UserRole

func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

func (r *RoleList) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	}
	return nil
}

func (r RoleList) Has(role UserRole) bool {
	for _, candidate := range r {
		if candidate == role {
			return true
		}
	}
	return false
}

type KYCLevel string

const (
	KYCLevelNone     KYCLevel = "none"
	KYCLevelBasic    KYCLevel = "basic"
	KYCLevelAdvanced KYCLevel = "advanced"
)

type ListingStatus string

const (
	ListingStatusDraft    ListingStatus = "draft"
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
	ListingStatusLive     ListingStatus = "live"
	ListingStatusSold     ListingStatus = "sold"
)

type AccessRequestStatus string

const (
	AccessRequestStatusPending  AccessRequestStatus = "pending"
	AccessRequestStatusApproved AccessRequestStatus = "approved"
	AccessRequestStatusRejected AccessRequestStatus = "rejected"
)

type EscrowStatus string

const (
	EscrowStatusInitiated EscrowStatus = "initiated"
	EscrowStatusFunded    EscrowStatus = "funded"
	EscrowStatusCompleted EscrowStatus = "completed"
	EscrowStatusDisputed  EscrowStatus = "disputed"
	EscrowStatusCancelled EscrowStatus = "cancelled"
)

type EnvelopeStatus string

const (
	EnvelopeStatusSent      EnvelopeStatus = "sent"
	EnvelopeStatusDelivered EnvelopeStatus = "delivered"
	EnvelopeStatusCompleted EnvelopeStatus = "completed"
	EnvelopeStatusDeclined  EnvelopeStatus = "declined"
	EnvelopeStatusVoided    EnvelopeStatus = "voided"
)

type KYCDocumentType string

const (
	KYCDocumentTypePassport      KYCDocumentType = "passport"
	KYCDocumentTypeDriverLicense KYCDocumentType = "drivers_license"
	KYCDocumentTypeNationalID    KYCDocumentType = "national_id"
	KYCDocumentTypeUtilityBill   KYCDocumentType = "utility_bill"
	KYCDocumentTypeBankStatement KYCDocumentType = "bank_statement"
)

type KYCReviewStatus string

const (
	KYCReviewStatusPending  KYCReviewStatus = "pending"
	KYCReviewStatusApproved KYCReviewStatus = "approved"
	KYCReviewStatusRejected KYCReviewStatus = "rejected"
)

type NotificationType string

const (
	NotificationTypeAccessRequest        NotificationType = "access_request"
	NotificationTypeNDASigned            NotificationType = "nda_signed"
	NotificationTypeNewMessage           NotificationType = "new_message"
	NotificationTypeListingApproved      NotificationType = "listing_approved"
	NotificationTypeListingRejected      NotificationType = "listing_rejected"
	NotificationTypeDocumentReady        NotificationType = "document_ready"
	NotificationTypeTransactionCompleted NotificationType = "transaction_completed"
	NotificationTypeKYCReviewed          NotificationType = "kyc_reviewed"
	NotificationTypeEscrowUpdated        NotificationType = "escrow_updated"
)
