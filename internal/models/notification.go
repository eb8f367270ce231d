// internal/models/notification.go
package models

import (
	"github.com/google/uuid"
)

// Notification is an append-only mailbox row. Only the read flag is ever
// mutated; only the recipient may delete it.
type Notification struct {
	BaseModel
	UserID    uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(50);not null;index"`
	Title     string           `json:"title" gorm:"size:255;not null"`
	Content   string           `json:"content" gorm:"type:text;not null"`
	RelatedID *uuid.UUID       `json:"related_id" gorm:"type:uuid"`
	IsRead    bool             `json:"is_read" gorm:"default:false;index"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type Message struct {
	BaseModel
	SenderID   uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null;index"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null;index"`
	ListingID  *uuid.UUID `json:"listing_id" gorm:"type:uuid;index"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	IsRead     bool       `json:"is_read" gorm:"default:false;index"`

	// Relationships
	Sender   User     `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver User     `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	Listing  *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
}
