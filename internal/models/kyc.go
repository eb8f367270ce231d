// internal/models/kyc.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type KYCDocument struct {
	BaseModel
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	DocumentType    KYCDocumentType `json:"document_type" gorm:"type:varchar(30);not null"`
	FilePath        string          `json:"file_path" gorm:"size:512;not null"`
	FileSize        int64           `json:"file_size"`
	MimeType        string          `json:"mime_type" gorm:"size:100"`
	Status          KYCReviewStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RejectionReason string          `json:"rejection_reason,omitempty" gorm:"type:text"`
	ReviewedBy      *uuid.UUID      `json:"reviewed_by" gorm:"type:uuid"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`

	// Relationships
	User     User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Reviewer *User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewedBy"`
}

// IdentityDocument reports whether the document proves identity (as opposed
// to proof of address); identity documents drive the advanced KYC level.
func (d *KYCDocument) IdentityDocument() bool {
	switch d.DocumentType {
	case KYCDocumentTypePassport, KYCDocumentTypeDriverLicense, KYCDocumentTypeNationalID:
		return true
	}
	return false
}
