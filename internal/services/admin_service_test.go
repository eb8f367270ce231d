// internal/services/admin_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

func TestAdminDashboard(t *testing.T) {
	db := newTestDB(t)
	service := NewAdminService(db)

	buyer := createTestUser(t, db, "buyer@example.com", models.UserRoleBuyer)
	seller := createTestUser(t, db, "seller@example.com", models.UserRoleSeller)

	createTestListing(t, db, seller, models.ListingStatusPending, true)
	listing := createTestListing(t, db, seller, models.ListingStatusApproved, true)

	require.NoError(t, db.Create(&models.Escrow{
		ListingID: listing.ID,
		BuyerID:   buyer.ID,
		SellerID:  seller.ID,
		Amount:    150000,
		Status:    models.EscrowStatusCompleted,
	}).Error)
	require.NoError(t, db.Create(&models.Escrow{
		ListingID: listing.ID,
		BuyerID:   buyer.ID,
		SellerID:  seller.ID,
		Amount:    90000,
		Status:    models.EscrowStatusFunded,
	}).Error)

	stats, err := service.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalListings)
	assert.Equal(t, int64(1), stats.PendingListings)
	assert.Equal(t, int64(1), stats.LiveListings)
	assert.Equal(t, int64(1), stats.OpenEscrows)
	assert.Equal(t, int64(1), stats.CompletedEscrows)
	assert.Equal(t, float64(150000), stats.EscrowVolume)
}

func TestAdminListUsersSearch(t *testing.T) {
	db := newTestDB(t)
	service := NewAdminService(db)

	createTestUser(t, db, "alice@example.com", models.UserRoleBuyer)
	createTestUser(t, db, "bob@example.com", models.UserRoleSeller)

	users, total, err := service.ListUsers(utils.PaginationParams{Page: 1, Limit: 10, Search: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

func TestAdminUpdateUserRoles(t *testing.T) {
	db := newTestDB(t)
	service := NewAdminService(db)

	user := createTestUser(t, db, "user@example.com", models.UserRoleBuyer)

	updated, err := service.UpdateUserRoles(user.ID, &UpdateUserRolesRequest{
		Roles: []string{"buyer", "admin"},
	})
	require.NoError(t, err)
	assert.True(t, updated.Roles.Has(models.UserRoleAdmin))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.Roles.Has(models.UserRoleAdmin))

	// Unknown roles are refused.
	_, err = service.UpdateUserRoles(user.ID, &UpdateUserRolesRequest{
		Roles: []string{"superuser"},
	})
	require.Error(t, err)
}

func TestAdminSetUserVerified(t *testing.T) {
	db := newTestDB(t)
	service := NewAdminService(db)

	user := createTestUser(t, db, "user@example.com", models.UserRoleSeller)

	updated, err := service.SetUserVerified(user.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)

	// Manual verification does not touch the KYC level.
	assert.Equal(t, models.KYCLevelNone, updated.KYCLevel)
}
