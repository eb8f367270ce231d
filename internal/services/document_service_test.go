// internal/services/document_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
)

type dataRoomFixture struct {
	db      *gorm.DB
	access  *AccessService
	service *DocumentService
	buyer   *models.User
	seller  *models.User
	listing *models.Listing
	public  *models.Document
	private *models.Document
}

func newDataRoomFixture(t *testing.T) *dataRoomFixture {
	t.Helper()

	db := newTestDB(t)
	cfg := testConfig()
	storage, err := NewStorageService(cfg)
	require.NoError(t, err)
	access := NewAccessService(db, NewNotificationService(db, cfg))

	f := &dataRoomFixture{
		db:      db,
		access:  access,
		service: NewDocumentService(db, storage, access),
		buyer:   createTestUser(t, db, "buyer@example.com", models.UserRoleBuyer),
		seller:  createTestUser(t, db, "seller@example.com", models.UserRoleSeller),
	}
	f.listing = createTestListing(t, db, f.seller, models.ListingStatusApproved, true)

	f.public = &models.Document{
		ListingID:  f.listing.ID,
		UploaderID: f.seller.ID,
		FileName:   "teaser.pdf",
		FilePath:   "data_room/teaser.pdf",
		IsPublic:   true,
	}
	require.NoError(t, db.Create(f.public).Error)

	f.private = &models.Document{
		ListingID:  f.listing.ID,
		UploaderID: f.seller.ID,
		FileName:   "financials.xlsx",
		FilePath:   "data_room/financials.xlsx",
		IsPublic:   false,
	}
	require.NoError(t, db.Create(f.private).Error)

	return f
}

func (f *dataRoomFixture) grantAccess(t *testing.T) {
	t.Helper()

	request, err := f.access.Create(f.buyer.ID, &CreateAccessRequestRequest{ListingID: f.listing.ID})
	require.NoError(t, err)
	_, err = f.access.Decide(request.ID, f.seller.ID, true)
	require.NoError(t, err)
	_, err = f.access.SignNDA(request.ID, f.buyer.ID)
	require.NoError(t, err)
}

func TestDataRoomListVisibility(t *testing.T) {
	f := newDataRoomFixture(t)

	// Anonymous viewers see public documents only.
	documents, err := f.service.List(f.listing.ID, nil)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "teaser.pdf", documents[0].FileName)

	// So do buyers without a signed NDA.
	buyerIdentity := &Identity{UserID: f.buyer.ID, Roles: f.buyer.Roles}
	documents, err = f.service.List(f.listing.ID, buyerIdentity)
	require.NoError(t, err)
	require.Len(t, documents, 1)

	// The seller always sees the whole data room.
	documents, err = f.service.List(f.listing.ID, &Identity{UserID: f.seller.ID, Roles: f.seller.Roles})
	require.NoError(t, err)
	assert.Len(t, documents, 2)

	// A signed NDA unlocks it for the buyer.
	f.grantAccess(t)
	documents, err = f.service.List(f.listing.ID, buyerIdentity)
	require.NoError(t, err)
	assert.Len(t, documents, 2)
}

func TestDataRoomDownloadLocked(t *testing.T) {
	f := newDataRoomFixture(t)

	_, err := f.service.DownloadURL(f.private.ID, &Identity{UserID: f.buyer.ID, Roles: f.buyer.Roles})
	require.ErrorIs(t, err, ErrDataRoomLocked)
}

func TestDataRoomDelete(t *testing.T) {
	f := newDataRoomFixture(t)

	// Only the seller removes documents.
	err := f.service.Delete(f.private.ID, f.buyer.ID)
	require.Error(t, err)

	require.NoError(t, f.service.Delete(f.private.ID, f.seller.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Document{}).Where("listing_id = ?", f.listing.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
