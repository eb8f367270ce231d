// internal/services/notification_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

func TestNotificationMailbox(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, testConfig())

	user := createTestUser(t, db, "user@example.com", models.UserRoleBuyer)

	require.NoError(t, service.Emit(nil, user.ID, models.NotificationTypeEscrowUpdated, "Escrow Funded", "Funds received.", nil))
	require.NoError(t, service.Emit(nil, user.ID, models.NotificationTypeNewMessage, "New Message", "You have a new message.", nil))

	notifications, total, err := service.ListForUser(user.ID, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, notifications, 2)

	unread, err := service.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, service.MarkRead(notifications[0].ID, user.ID))
	unread, err = service.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, service.MarkAllRead(user.ID))
	unread, err = service.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestNotificationOwnershipChecks(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, testConfig())

	owner := createTestUser(t, db, "owner@example.com", models.UserRoleBuyer)
	other := createTestUser(t, db, "other@example.com", models.UserRoleBuyer)

	require.NoError(t, service.Emit(nil, owner.ID, models.NotificationTypeAccessRequest, "New Access Request", "Someone wants in.", nil))

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&notification).Error)

	// Another user can neither read-flag nor delete the row.
	require.Error(t, service.MarkRead(notification.ID, other.ID))
	require.Error(t, service.Delete(notification.ID, other.ID))

	require.NoError(t, service.Delete(notification.ID, owner.ID))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
