// internal/services/auth_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := testConfig()
	return NewAuthService(db, cfg, NewNotificationService(db, cfg)), db
}

func TestAuthRegister(t *testing.T) {
	service, db := newAuthService(t)

	tokens, err := service.Register(&RegisterRequest{
		Email:     "new@example.com",
		Password:  "Secret123!",
		FirstName: "New",
		LastName:  "User",
		Roles:     []string{"buyer", "seller"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, models.KYCLevelNone, tokens.User.KYCLevel)
	assert.True(t, tokens.User.Roles.Has(models.UserRoleBuyer))
	assert.True(t, tokens.User.Roles.Has(models.UserRoleSeller))

	var stored models.User
	require.NoError(t, db.Where("email = ?", "new@example.com").First(&stored).Error)
	assert.NotEqual(t, "Secret123!", stored.PasswordHash)

	// Claims round-trip through the issued access token.
	claims, err := utils.ValidateJWT(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID.String(), claims.UserID)
	assert.ElementsMatch(t, []string{"buyer", "seller"}, claims.Roles)

	_, err = service.Register(&RegisterRequest{
		Email:     "new@example.com",
		Password:  "Secret123!",
		FirstName: "Dupe",
		LastName:  "User",
		Roles:     []string{"buyer"},
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthRegisterValidation(t *testing.T) {
	service, _ := newAuthService(t)

	// Weak passwords are refused.
	_, err := service.Register(&RegisterRequest{
		Email:     "weak@example.com",
		Password:  "password",
		FirstName: "Weak",
		LastName:  "User",
		Roles:     []string{"buyer"},
	})
	require.Error(t, err)

	// Self-registering as admin is not a thing.
	_, err = service.Register(&RegisterRequest{
		Email:     "sneaky@example.com",
		Password:  "Secret123!",
		FirstName: "Sneaky",
		LastName:  "User",
		Roles:     []string{"admin"},
	})
	require.Error(t, err)
}

func TestAuthLogin(t *testing.T) {
	service, db := newAuthService(t)
	user := createTestUser(t, db, "login@example.com", models.UserRoleBuyer)

	tokens, err := service.Login(&LoginRequest{
		Email:    "login@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	require.NotNil(t, tokens.User.LastLoginAt)
	assert.Equal(t, user.ID, tokens.User.ID)

	_, err = service.Login(&LoginRequest{
		Email:    "login@example.com",
		Password: "WrongPass1!",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(&LoginRequest{
		Email:    "nobody@example.com",
		Password: "Secret123!",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthRefresh(t *testing.T) {
	service, db := newAuthService(t)
	createTestUser(t, db, "refresh@example.com", models.UserRoleBuyer)

	tokens, err := service.Login(&LoginRequest{
		Email:    "refresh@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	refreshed, err := service.Refresh(&RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, tokens.User.ID, refreshed.User.ID)

	_, err = service.Refresh(&RefreshRequest{RefreshToken: "not-a-token"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthUpdateProfile(t *testing.T) {
	service, db := newAuthService(t)
	user := createTestUser(t, db, "profile@example.com", models.UserRoleBuyer)

	firstName := "Updated"
	phone := "+356 2133 0000"
	updated, err := service.UpdateProfile(user.ID, &UpdateProfileRequest{
		FirstName: &firstName,
		Phone:     &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.FirstName)
	assert.Equal(t, phone, updated.Phone)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "Updated", reloaded.FirstName)
}

func TestAuthRegisterSurvivesEmailFailure(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	// Point SMTP at a closed local port so delivery fails immediately.
	cfg.Email.SMTPHost = "127.0.0.1"
	cfg.Email.SMTPPort = "1"
	service := NewAuthService(db, cfg, NewNotificationService(db, cfg))

	hook := logrustest.NewGlobal()
	defer hook.Reset()

	tokens, err := service.Register(&RegisterRequest{
		Email:     "nomail@example.com",
		Password:  "Secret123!",
		FirstName: "No",
		LastName:  "Mail",
		Roles:     []string{"buyer"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	// The delivery failure surfaces as a warning, not a registration error.
	assert.Eventually(t, func() bool {
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.WarnLevel && entry.Message == "Failed to send welcome email" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}
