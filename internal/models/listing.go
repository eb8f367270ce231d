// internal/models/listing.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Listing struct {
	BaseModel
	SellerID       uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title          string         `json:"title" gorm:"size:255;not null"`
	Description    string         `json:"description" gorm:"type:text"`
	Price          float64        `json:"price" gorm:"type:decimal(14,2)"`
	RevenueMonthly float64        `json:"revenue_monthly" gorm:"type:decimal(14,2)"`
	RevenueAnnual  float64        `json:"revenue_annual" gorm:"type:decimal(14,2)"`
	Category       string         `json:"category" gorm:"size:100;index"`
	Country        string         `json:"country" gorm:"size:100"`
	LicenseType    string         `json:"license_type" gorm:"size:100"`
	Tags           pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`
	IsPublic       bool           `json:"is_public" gorm:"default:false"`
	Status         ListingStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Views          int64          `json:"views" gorm:"default:0"`

	// Relationships
	Seller         User            `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Documents      []Document      `json:"documents,omitempty" gorm:"foreignKey:ListingID"`
	AccessRequests []AccessRequest `json:"access_requests,omitempty" gorm:"foreignKey:ListingID"`
	Escrows        []Escrow        `json:"escrows,omitempty" gorm:"foreignKey:ListingID"`
}

// Browsable reports whether the listing appears in the public browse view.
func (l *Listing) Browsable() bool {
	return l.Status == ListingStatusApproved && l.IsPublic
}

// Document is a data-room file attached to a listing. Private documents are
// only readable by the seller and by buyers holding an approved, NDA-signed
// access request.
type Document struct {
	BaseModel
	ListingID  uuid.UUID `json:"listing_id" gorm:"type:uuid;not null;index"`
	UploaderID uuid.UUID `json:"uploader_id" gorm:"type:uuid;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	FilePath   string    `json:"file_path" gorm:"size:512;not null"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type" gorm:"size:100"`
	IsPublic   bool      `json:"is_public" gorm:"default:false"`

	// Relationships
	Listing  Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Uploader User    `json:"uploader,omitempty" gorm:"foreignKey:UploaderID"`
}

type DocumentAccessLog struct {
	BaseModel
	DocumentID uuid.UUID `json:"document_id" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Action     string    `json:"action" gorm:"size:50;not null"`

	// Relationships
	Document Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
