// internal/services/kyc_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
)

func newKYCService(t *testing.T, db *gorm.DB) *KYCService {
	t.Helper()

	cfg := testConfig()
	storage, err := NewStorageService(cfg)
	require.NoError(t, err)
	return NewKYCService(db, storage, NewNotificationService(db, cfg))
}

func createKYCDocument(t *testing.T, db *gorm.DB, user *models.User, docType models.KYCDocumentType) *models.KYCDocument {
	t.Helper()

	document := &models.KYCDocument{
		UserID:       user.ID,
		DocumentType: docType,
		FilePath:     "kyc/" + string(docType) + ".pdf",
		FileSize:     1024,
		MimeType:     "application/pdf",
		Status:       models.KYCReviewStatusPending,
	}
	require.NoError(t, db.Create(document).Error)
	return document
}

func TestKYCReviewApprovalRaisesLevel(t *testing.T) {
	db := newTestDB(t)
	service := newKYCService(t, db)

	user := createTestUser(t, db, "user@example.com", models.UserRoleBuyer)
	admin := createTestUser(t, db, "admin@example.com", models.UserRoleAdmin)

	passport := createKYCDocument(t, db, user, models.KYCDocumentTypePassport)
	reviewed, err := service.Review(passport.ID, admin.ID, &KYCReviewRequest{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, models.KYCReviewStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, admin.ID, *reviewed.ReviewedBy)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.KYCLevelBasic, reloaded.KYCLevel)

	// Identity plus proof of address unlocks the advanced level.
	utility := createKYCDocument(t, db, user, models.KYCDocumentTypeUtilityBill)
	_, err = service.Review(utility.ID, admin.ID, &KYCReviewRequest{Approve: true})
	require.NoError(t, err)

	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.KYCLevelAdvanced, reloaded.KYCLevel)

	assert.Equal(t, int64(2), notificationCount(t, db, user.ID, models.NotificationTypeKYCReviewed))
}

func TestKYCReviewAddressAloneGrantsNothing(t *testing.T) {
	db := newTestDB(t)
	service := newKYCService(t, db)

	user := createTestUser(t, db, "user@example.com", models.UserRoleBuyer)
	admin := createTestUser(t, db, "admin@example.com", models.UserRoleAdmin)

	utility := createKYCDocument(t, db, user, models.KYCDocumentTypeUtilityBill)
	_, err := service.Review(utility.ID, admin.ID, &KYCReviewRequest{Approve: true})
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.KYCLevelNone, reloaded.KYCLevel)
}

func TestKYCReviewRejection(t *testing.T) {
	db := newTestDB(t)
	service := newKYCService(t, db)

	user := createTestUser(t, db, "user@example.com", models.UserRoleBuyer)
	admin := createTestUser(t, db, "admin@example.com", models.UserRoleAdmin)

	document := createKYCDocument(t, db, user, models.KYCDocumentTypePassport)

	// Rejections must carry a reason.
	_, err := service.Review(document.ID, admin.ID, &KYCReviewRequest{Approve: false})
	require.Error(t, err)

	reviewed, err := service.Review(document.ID, admin.ID, &KYCReviewRequest{
		Approve:         false,
		RejectionReason: "Document is expired",
	})
	require.NoError(t, err)
	assert.Equal(t, models.KYCReviewStatusRejected, reviewed.Status)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.KYCLevelNone, reloaded.KYCLevel)

	// Reviews are one-shot.
	_, err = service.Review(document.ID, admin.ID, &KYCReviewRequest{Approve: true})
	require.ErrorIs(t, err, ErrKYCAlreadyReviewed)
}

func TestKYCLevelNeverLowered(t *testing.T) {
	db := newTestDB(t)
	service := newKYCService(t, db)

	user := createTestUser(t, db, "user@example.com", models.UserRoleBuyer)
	admin := createTestUser(t, db, "admin@example.com", models.UserRoleAdmin)

	passport := createKYCDocument(t, db, user, models.KYCDocumentTypePassport)
	_, err := service.Review(passport.ID, admin.ID, &KYCReviewRequest{Approve: true})
	require.NoError(t, err)

	// A later rejected document leaves the earned level untouched.
	license := createKYCDocument(t, db, user, models.KYCDocumentTypeDriverLicense)
	_, err = service.Review(license.ID, admin.ID, &KYCReviewRequest{
		Approve:         false,
		RejectionReason: "Photo unreadable",
	})
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.KYCLevelBasic, reloaded.KYCLevel)
}

func TestKYCDownloadURLAuthorization(t *testing.T) {
	db := newTestDB(t)
	service := newKYCService(t, db)

	user := createTestUser(t, db, "user@example.com", models.UserRoleBuyer)
	other := createTestUser(t, db, "other@example.com", models.UserRoleBuyer)

	document := createKYCDocument(t, db, user, models.KYCDocumentTypePassport)

	// Non-owners without review rights get a not-found, not a URL.
	_, err := service.DownloadURL(document.ID, &Identity{UserID: other.ID, Roles: other.Roles})
	require.ErrorIs(t, err, ErrKYCDocumentNotFound)
}
