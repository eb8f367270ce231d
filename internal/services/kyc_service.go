// internal/services/kyc_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

type KYCService struct {
	db            *gorm.DB
	storage       *StorageService
	notifications *NotificationService
}

type KYCUploadRequest struct {
	DocumentType models.KYCDocumentType `json:"document_type" validate:"required,oneof=passport drivers_license national_id utility_bill bank_statement"`
}

type KYCReviewRequest struct {
	Approve         bool   `json:"approve"`
	RejectionReason string `json:"rejection_reason,omitempty" validate:"required_if=Approve false,max=1000"`
}

var (
	ErrKYCDocumentNotFound = errors.New("kyc document not found")
	ErrKYCAlreadyReviewed  = errors.New("kyc document has already been reviewed")
)

func NewKYCService(db *gorm.DB, storage *StorageService, notifications *NotificationService) *KYCService {
	return &KYCService{
		db:            db,
		storage:       storage,
		notifications: notifications,
	}
}

// Upload stores a verification document and queues it for review. The file
// signature is sniffed before anything touches storage.
func (s *KYCService) Upload(userID uuid.UUID, req *KYCUploadRequest, file multipart.File, header *multipart.FileHeader) (*models.KYCDocument, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.storage.ValidateDocument(file); err != nil {
		return nil, err
	}

	options := s.storage.GetDefaultUploadOptions("kyc")
	result, err := s.storage.UploadFile(file, header, options)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	document := &models.KYCDocument{
		UserID:       userID,
		DocumentType: req.DocumentType,
		FilePath:     result.Key,
		FileSize:     result.Size,
		MimeType:     result.MimeType,
		Status:       models.KYCReviewStatusPending,
	}

	if err := s.db.Create(document).Error; err != nil {
		return nil, fmt.Errorf("failed to create kyc document: %w", err)
	}

	return document, nil
}

func (s *KYCService) ListForUser(userID uuid.UUID) ([]models.KYCDocument, error) {
	var documents []models.KYCDocument
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch kyc documents: %w", err)
	}
	return documents, nil
}

func (s *KYCService) ListPending(params utils.PaginationParams) ([]models.KYCDocument, int64, error) {
	query := s.db.Model(&models.KYCDocument{}).
		Where("status = ?", models.KYCReviewStatusPending).
		Preload("User")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count kyc documents: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var documents []models.KYCDocument
	if err := query.Find(&documents).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch kyc documents: %w", err)
	}

	return documents, total, nil
}

// DownloadURL returns a presigned link for the document. Only the owner and
// reviewers may fetch it.
func (s *KYCService) DownloadURL(documentID uuid.UUID, viewer *Identity) (string, error) {
	var document models.KYCDocument
	if err := s.db.First(&document, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKYCDocumentNotFound
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	if document.UserID != viewer.UserID && !viewer.Can(CapReviewKYC) {
		return "", ErrKYCDocumentNotFound
	}

	return s.storage.GeneratePresignedURL(document.FilePath, 15*time.Minute)
}

// Review records the decision on a pending document. Approval of an identity
// document raises the user to basic KYC; a second approved document type
// raises them to advanced. The user is notified either way.
func (s *KYCService) Review(documentID, reviewerID uuid.UUID, req *KYCReviewRequest) (*models.KYCDocument, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var document models.KYCDocument

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&document, documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrKYCDocumentNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if document.Status != models.KYCReviewStatusPending {
			return ErrKYCAlreadyReviewed
		}

		newStatus := models.KYCReviewStatusApproved
		if !req.Approve {
			newStatus = models.KYCReviewStatusRejected
		}

		now := time.Now()
		result := tx.Model(&models.KYCDocument{}).
			Where("id = ? AND status = ?", documentID, models.KYCReviewStatusPending).
			Updates(map[string]interface{}{
				"status":           newStatus,
				"rejection_reason": req.RejectionReason,
				"reviewed_by":      reviewerID,
				"reviewed_at":      now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update kyc document: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrKYCAlreadyReviewed
		}
		document.Status = newStatus
		document.RejectionReason = req.RejectionReason
		document.ReviewedBy = &reviewerID
		document.ReviewedAt = &now

		if req.Approve {
			if err := s.recalculateLevel(tx, document.UserID); err != nil {
				return err
			}
		}

		title := "KYC Document Approved"
		content := fmt.Sprintf("Your %s has been verified.", document.DocumentType)
		if !req.Approve {
			title = "KYC Document Rejected"
			content = fmt.Sprintf("Your %s was rejected: %s", document.DocumentType, req.RejectionReason)
		}

		return s.notifications.Emit(tx, document.UserID, models.NotificationTypeKYCReviewed, title, content, &document.ID)
	})
	if err != nil {
		return nil, err
	}

	return &document, nil
}

// recalculateLevel derives the user's KYC level from their approved
// documents. One approved identity document gives basic; identity plus proof
// of address gives advanced. Levels never go down here.
func (s *KYCService) recalculateLevel(tx *gorm.DB, userID uuid.UUID) error {
	var approved []models.KYCDocument
	if err := tx.Where("user_id = ? AND status = ?", userID, models.KYCReviewStatusApproved).
		Find(&approved).Error; err != nil {
		return fmt.Errorf("failed to fetch approved documents: %w", err)
	}

	hasIdentity := false
	hasAddress := false
	for i := range approved {
		if approved[i].IdentityDocument() {
			hasIdentity = true
		} else {
			hasAddress = true
		}
	}

	level := models.KYCLevelNone
	switch {
	case hasIdentity && hasAddress:
		level = models.KYCLevelAdvanced
	case hasIdentity:
		level = models.KYCLevelBasic
	}

	if level == models.KYCLevelNone {
		return nil
	}

	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"kyc_level":   level,
			"is_verified": true,
		}).Error
}
