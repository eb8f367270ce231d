// internal/models/access_request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type AccessRequest struct {
	BaseModel
	ListingID   uuid.UUID           `json:"listing_id" gorm:"type:uuid;not null;index"`
	BuyerID     uuid.UUID           `json:"buyer_id" gorm:"type:uuid;not null;index"`
	Message     string              `json:"message,omitempty" gorm:"type:text"`
	Status      AccessRequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	NDASigned   bool                `json:"nda_signed" gorm:"default:false"`
	NDASignedAt *time.Time          `json:"nda_signed_at"`

	// Relationships
	Listing Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

// GrantsDataRoomAccess reports whether the request unlocks the listing's
// private documents. Approval alone is not enough, the NDA must be signed.
func (r *AccessRequest) GrantsDataRoomAccess() bool {
	return r.Status == AccessRequestStatusApproved && r.NDASigned
}
