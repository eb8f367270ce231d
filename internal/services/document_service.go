// internal/services/document_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
)

// DocumentService manages the per-listing data room. The gate is the NDA:
// private documents open only to the seller and to buyers whose access
// request is approved and NDA-signed.
type DocumentService struct {
	db      *gorm.DB
	storage *StorageService
	access  *AccessService
}

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDataRoomLocked   = errors.New("data room access requires an approved access request with a signed NDA")
)

func NewDocumentService(db *gorm.DB, storage *StorageService, access *AccessService) *DocumentService {
	return &DocumentService{
		db:      db,
		storage: storage,
		access:  access,
	}
}

func (s *DocumentService) Upload(listingID, uploaderID uuid.UUID, isPublic bool, file multipart.File, header *multipart.FileHeader) (*models.Document, error) {
	var listing models.Listing
	if err := s.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.SellerID != uploaderID {
		return nil, errors.New("only the listing owner can upload documents")
	}

	options := s.storage.GetDefaultUploadOptions("data_room")
	result, err := s.storage.UploadFile(file, header, options)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	document := &models.Document{
		ListingID:  listingID,
		UploaderID: uploaderID,
		FileName:   header.Filename,
		FilePath:   result.Key,
		FileSize:   result.Size,
		MimeType:   result.MimeType,
		IsPublic:   isPublic,
	}

	if err := s.db.Create(document).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return document, nil
}

// List returns the documents visible to the viewer. Public documents are
// visible to anyone who can see the listing; private ones need data room
// access.
func (s *DocumentService) List(listingID uuid.UUID, viewer *Identity) ([]models.Document, error) {
	var listing models.Listing
	if err := s.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	query := s.db.Where("listing_id = ?", listingID).Order("created_at DESC")

	unlocked, err := s.hasFullAccess(&listing, viewer)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		query = query.Where("is_public = ?", true)
	}

	var documents []models.Document
	if err := query.Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return documents, nil
}

// DownloadURL hands out a presigned link and records the access.
func (s *DocumentService) DownloadURL(documentID uuid.UUID, viewer *Identity) (string, error) {
	var document models.Document
	if err := s.db.Preload("Listing").First(&document, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrDocumentNotFound
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	if !document.IsPublic {
		unlocked, err := s.hasFullAccess(&document.Listing, viewer)
		if err != nil {
			return "", err
		}
		if !unlocked {
			return "", ErrDataRoomLocked
		}
	}

	url, err := s.storage.GeneratePresignedURL(document.FilePath, 15*time.Minute)
	if err != nil {
		return "", err
	}

	log := &models.DocumentAccessLog{
		DocumentID: document.ID,
		UserID:     viewer.UserID,
		Action:     "download",
	}
	if err := s.db.Create(log).Error; err != nil {
		return "", fmt.Errorf("failed to record document access: %w", err)
	}

	return url, nil
}

func (s *DocumentService) Delete(documentID, sellerID uuid.UUID) error {
	var document models.Document
	if err := s.db.Preload("Listing").First(&document, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if document.Listing.SellerID != sellerID {
		return errors.New("only the listing owner can delete documents")
	}

	if err := s.storage.DeleteFile(document.FilePath); err != nil {
		return err
	}

	return s.db.Delete(&document).Error
}

func (s *DocumentService) hasFullAccess(listing *models.Listing, viewer *Identity) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	if listing.SellerID == viewer.UserID || viewer.IsAdmin() {
		return true, nil
	}
	return s.access.HasDataRoomAccess(listing.ID, viewer.UserID)
}
