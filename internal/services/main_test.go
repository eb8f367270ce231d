// internal/services/main_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/igxmarket/igx-backend/internal/config"
	"github.com/igxmarket/igx-backend/internal/models"
)

var testDBSeq int64

// newTestDB opens an isolated in-memory database per test. The named DSN with
// shared cache keeps the database alive across gorm's pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:igx_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Listing{},
		&models.Document{},
		&models.DocumentAccessLog{},
		&models.AccessRequest{},
		&models.Escrow{},
		&models.StripeCustomer{},
		&models.SignatureEnvelope{},
		&models.Notification{},
		&models.Message{},
		&models.KYCDocument{},
		&models.AuditLog{},
	))

	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.AccessTokenTTL = 1
	cfg.JWT.RefreshTokenTTL = 24
	cfg.Frontend.BaseURL = "http://localhost:3000"
	cfg.Payment.Currency = "usd"
	return cfg
}

func createTestUser(t *testing.T, db *gorm.DB, email string, roles ...models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Roles:     models.RoleList(roles),
	}
	require.NoError(t, user.SetPassword("Secret123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestListing(t *testing.T, db *gorm.DB, seller *models.User, status models.ListingStatus, isPublic bool) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		SellerID:    seller.ID,
		Title:       "Licensed Casino Brand",
		Description: "Established operator with MGA license",
		Price:       250000,
		Category:    "casino",
		Country:     "Malta",
		LicenseType: "MGA",
		IsPublic:    isPublic,
		Status:      status,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func notificationCount(t *testing.T, db *gorm.DB, userID interface{}, notificationType models.NotificationType) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, notificationType).
		Count(&count).Error)
	return count
}

// fakePaymentProvider records provider calls instead of talking to Stripe.
type fakePaymentProvider struct {
	customers   int
	checkoutErr error
	released    []string
}

func (f *fakePaymentProvider) CreateCustomer(email, name string) (string, error) {
	f.customers++
	return fmt.Sprintf("cus_test_%d", f.customers), nil
}

func (f *fakePaymentProvider) CreateCheckoutSession(customerID string, amount float64, productName string, metadata map[string]string, successURL, cancelURL string) (*CheckoutSession, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &CheckoutSession{
		SessionID:       "cs_test_1",
		URL:             "https://checkout.test/cs_test_1",
		PaymentIntentID: "pi_test_1",
	}, nil
}

func (f *fakePaymentProvider) ReleaseFunds(paymentIntentID string, amount float64) error {
	f.released = append(f.released, paymentIntentID)
	return nil
}

// fakeSignatureProvider synthesizes envelope ids without an external call.
type fakeSignatureProvider struct {
	seq int
	err error
}

func (f *fakeSignatureProvider) CreateEnvelope(listing *models.Listing, buyer, seller *models.User) (*EnvelopeDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	envelopeID := fmt.Sprintf("envelope_test_%d", f.seq)
	return &EnvelopeDetails{
		EnvelopeID:       envelopeID,
		DocumentType:     "purchase_agreement",
		SigningURLBuyer:  fmt.Sprintf("https://sign.test/%s/buyer", envelopeID),
		SigningURLSeller: fmt.Sprintf("https://sign.test/%s/seller", envelopeID),
	}, nil
}
