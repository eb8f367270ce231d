// internal/services/listing_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

func TestListingCreate(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)

	listing, err := service.Create(seller.ID, &CreateListingRequest{
		Title:       "Sportsbook Platform",
		Description: "White-label sportsbook with Curacao license",
		Price:       80000,
		Category:    "sportsbook",
		Country:     "Curacao",
		LicenseType: "Curacao eGaming",
		Tags:        []string{"sportsbook", "white-label"},
		IsPublic:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusDraft, listing.Status)
	assert.Equal(t, seller.ID, listing.SellerID)
	assert.Equal(t, []string{"sportsbook", "white-label"}, []string(listing.Tags))

	// Too-short titles fail validation.
	_, err = service.Create(seller.ID, &CreateListingRequest{Title: "ab"})
	require.Error(t, err)

	// SubmitForReview skips the draft stage.
	submitted, err := service.Create(seller.ID, &CreateListingRequest{
		Title:           "Poker Network Seat",
		SubmitForReview: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPending, submitted.Status)
}

func TestListingBrowseShowsOnlyApprovedPublic(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)

	createTestListing(t, db, seller, models.ListingStatusDraft, true)
	createTestListing(t, db, seller, models.ListingStatusApproved, false)
	visible := createTestListing(t, db, seller, models.ListingStatusApproved, true)

	results, total, err := service.Browse(ListingSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, visible.ID, results[0].ID)
}

func TestListingBrowseFilters(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)

	malta := createTestListing(t, db, seller, models.ListingStatusApproved, true)

	cheap := createTestListing(t, db, seller, models.ListingStatusApproved, true)
	require.NoError(t, db.Model(cheap).Updates(map[string]interface{}{
		"country": "Curacao",
		"price":   5000,
	}).Error)

	results, total, err := service.Browse(ListingSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 10},
		Country:          "Malta",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, malta.ID, results[0].ID)

	results, total, err = service.Browse(ListingSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 10},
		MinPrice:         100000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, malta.ID, results[0].ID)
}

func TestListingGetVisibility(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)
	draft := createTestListing(t, db, seller, models.ListingStatusDraft, true)

	// Anonymous viewers never see non-browsable listings.
	_, err := service.Get(draft.ID, nil)
	require.ErrorIs(t, err, ErrListingNotFound)

	other := createTestUser(t, db, "other@example.com", models.UserRoleBuyer)
	_, err = service.Get(draft.ID, &Identity{UserID: other.ID, Roles: other.Roles})
	require.ErrorIs(t, err, ErrListingNotFound)

	// The owner and admins do.
	found, err := service.Get(draft.ID, &Identity{UserID: seller.ID, Roles: seller.Roles})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	admin := createTestUser(t, db, "admin@example.com", models.UserRoleAdmin)
	_, err = service.Get(draft.ID, &Identity{UserID: admin.ID, Roles: admin.Roles})
	require.NoError(t, err)
}

func TestListingGetCountsViews(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)
	listing := createTestListing(t, db, seller, models.ListingStatusApproved, true)

	first, err := service.Get(listing.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Views)

	second, err := service.Get(listing.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Views)
}

func TestListingSubmitAndReview(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)
	listing := createTestListing(t, db, seller, models.ListingStatusDraft, true)

	submitted, err := service.Submit(listing.ID, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPending, submitted.Status)

	// Only drafts can be submitted.
	_, err = service.Submit(listing.ID, seller.ID)
	require.Error(t, err)

	approved, err := service.Review(listing.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusApproved, approved.Status)
	assert.Equal(t, int64(1), notificationCount(t, db, seller.ID, models.NotificationTypeListingApproved))

	// Decisions are one-shot.
	_, err = service.Review(listing.ID, false)
	require.Error(t, err)
}

func TestListingReviewReject(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)
	listing := createTestListing(t, db, seller, models.ListingStatusPending, true)

	rejected, err := service.Review(listing.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusRejected, rejected.Status)
	assert.Equal(t, int64(1), notificationCount(t, db, seller.ID, models.NotificationTypeListingRejected))
}

func TestListingUpdateOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)
	other := createTestUser(t, db, "other@example.com", models.UserRoleSeller)
	listing := createTestListing(t, db, seller, models.ListingStatusDraft, false)

	newTitle := "Rebranded Casino Portfolio"
	newPrice := 300000.0

	_, err := service.Update(listing.ID, other.ID, &UpdateListingRequest{Title: &newTitle})
	require.Error(t, err)

	updated, err := service.Update(listing.ID, seller.ID, &UpdateListingRequest{
		Title: &newTitle,
		Price: &newPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, newPrice, updated.Price)
}

func TestListingMarkSold(t *testing.T) {
	db := newTestDB(t)
	service := NewListingService(db, NewNotificationService(db, testConfig()))
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)

	listing := createTestListing(t, db, seller, models.ListingStatusApproved, true)
	require.NoError(t, service.MarkSold(listing.ID))

	var reloaded models.Listing
	require.NoError(t, db.First(&reloaded, listing.ID).Error)
	assert.Equal(t, models.ListingStatusSold, reloaded.Status)

	// Draft listings cannot be sold.
	draft := createTestListing(t, db, seller, models.ListingStatusDraft, false)
	require.Error(t, service.MarkSold(draft.ID))
}
