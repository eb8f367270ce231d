// internal/services/escrow_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/models"
)

type EscrowServiceTestSuite struct {
	suite.Suite
	db         *gorm.DB
	payments   *fakePaymentProvider
	signatures *fakeSignatureProvider
	service    *EscrowService

	buyer   *models.User
	seller  *models.User
	listing *models.Listing
}

func (s *EscrowServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.payments = &fakePaymentProvider{}
	s.signatures = &fakeSignatureProvider{}

	cfg := testConfig()
	notifications := NewNotificationService(s.db, cfg)
	s.service = NewEscrowService(s.db, cfg, s.payments, s.signatures, notifications)

	s.buyer = createTestUser(s.T(), s.db, "buyer@example.com", models.UserRoleBuyer)
	s.seller = createTestUser(s.T(), s.db, "seller@example.com", models.UserRoleSeller)
	s.listing = createTestListing(s.T(), s.db, s.seller, models.ListingStatusApproved, true)
}

func (s *EscrowServiceTestSuite) initiate() *models.Escrow {
	resp, err := s.service.InitiatePayment(&InitiatePaymentRequest{
		ListingID: s.listing.ID,
		SellerID:  s.seller.ID,
		BuyerID:   s.buyer.ID,
		Amount:    250000,
	})
	s.Require().NoError(err)

	var escrow models.Escrow
	s.Require().NoError(s.db.First(&escrow, resp.EscrowID).Error)
	return &escrow
}

func (s *EscrowServiceTestSuite) TestInitiatePaymentCreatesEscrow() {
	resp, err := s.service.InitiatePayment(&InitiatePaymentRequest{
		ListingID: s.listing.ID,
		SellerID:  s.seller.ID,
		BuyerID:   s.buyer.ID,
		Amount:    250000,
	})
	s.Require().NoError(err)
	s.Equal("https://checkout.test/cs_test_1", resp.URL)

	var escrow models.Escrow
	s.Require().NoError(s.db.First(&escrow, resp.EscrowID).Error)
	s.Equal(models.EscrowStatusInitiated, escrow.Status)
	s.Equal("pi_test_1", escrow.StripePaymentIntentID)
	s.Equal(float64(250000), escrow.Amount)
}

func (s *EscrowServiceTestSuite) TestInitiatePaymentKeepsEscrowOnCheckoutFailure() {
	s.payments.checkoutErr = errors.New("stripe unavailable")

	_, err := s.service.InitiatePayment(&InitiatePaymentRequest{
		ListingID: s.listing.ID,
		SellerID:  s.seller.ID,
		BuyerID:   s.buyer.ID,
		Amount:    1000,
	})
	s.Require().Error(err)

	var count int64
	s.Require().NoError(s.db.Model(&models.Escrow{}).
		Where("listing_id = ? AND status = ?", s.listing.ID, models.EscrowStatusInitiated).
		Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *EscrowServiceTestSuite) TestInitiatePaymentRejectsSelfPurchase() {
	_, err := s.service.InitiatePayment(&InitiatePaymentRequest{
		ListingID: s.listing.ID,
		SellerID:  s.seller.ID,
		BuyerID:   s.seller.ID,
		Amount:    1000,
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "different users")
}

func (s *EscrowServiceTestSuite) TestInitiatePaymentRejectsZeroAmount() {
	_, err := s.service.InitiatePayment(&InitiatePaymentRequest{
		ListingID: s.listing.ID,
		SellerID:  s.seller.ID,
		BuyerID:   s.buyer.ID,
		Amount:    0,
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "validation failed")
}

func (s *EscrowServiceTestSuite) TestInitiatePaymentReusesStripeCustomer() {
	s.initiate()
	s.initiate()
	s.Equal(1, s.payments.customers)
}

func (s *EscrowServiceTestSuite) TestCreateAgreementLinksOpenEscrow() {
	escrow := s.initiate()

	envelope, err := s.service.CreateAgreement(&CreateAgreementRequest{
		ListingID: s.listing.ID,
		BuyerID:   s.buyer.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.EnvelopeStatusSent, envelope.Status)
	s.Equal("purchase_agreement", envelope.DocumentType)

	var reloaded models.Escrow
	s.Require().NoError(s.db.First(&reloaded, escrow.ID).Error)
	s.Require().NotNil(reloaded.EnvelopeID)
	s.Equal(envelope.ID, *reloaded.EnvelopeID)

	s.Equal(int64(1), notificationCount(s.T(), s.db, s.buyer.ID, models.NotificationTypeDocumentReady))
	s.Equal(int64(1), notificationCount(s.T(), s.db, s.seller.ID, models.NotificationTypeDocumentReady))
}

func (s *EscrowServiceTestSuite) TestCompleteRequiresLinkedAgreement() {
	escrow := s.initiate()

	err := s.service.CompleteEscrow(escrow.ID)
	s.Require().ErrorIs(err, ErrAgreementNotSigned)

	var reloaded models.Escrow
	s.Require().NoError(s.db.First(&reloaded, escrow.ID).Error)
	s.Equal(models.EscrowStatusInitiated, reloaded.Status)
	s.Nil(reloaded.CompletionDate)
	s.Empty(s.payments.released)
	s.Equal(int64(0), notificationCount(s.T(), s.db, s.buyer.ID, models.NotificationTypeTransactionCompleted))
}

func (s *EscrowServiceTestSuite) TestCompleteRequiresCompletedAgreement() {
	escrow := s.initiate()

	_, err := s.service.CreateAgreement(&CreateAgreementRequest{
		ListingID: s.listing.ID,
		BuyerID:   s.buyer.ID,
	})
	s.Require().NoError(err)

	// Envelope is still `sent`; funds stay locked.
	err = s.service.CompleteEscrow(escrow.ID)
	s.Require().ErrorIs(err, ErrAgreementNotSigned)
	s.Empty(s.payments.released)
}

func (s *EscrowServiceTestSuite) TestCompleteReleasesFundsExactlyOnce() {
	escrow := s.initiate()
	s.Require().NoError(s.service.MarkFunded(escrow.ID))

	envelope, err := s.service.CreateAgreement(&CreateAgreementRequest{
		ListingID: s.listing.ID,
		BuyerID:   s.buyer.ID,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.SignatureEnvelope{}).
		Where("id = ?", envelope.ID).
		Update("status", models.EnvelopeStatusCompleted).Error)

	s.Require().NoError(s.service.CompleteEscrow(escrow.ID))

	var reloaded models.Escrow
	s.Require().NoError(s.db.First(&reloaded, escrow.ID).Error)
	s.Equal(models.EscrowStatusCompleted, reloaded.Status)
	s.NotNil(reloaded.CompletionDate)
	s.Equal([]string{"pi_test_1"}, s.payments.released)

	var buyerNote models.Notification
	s.Require().NoError(s.db.Where("user_id = ? AND type = ?", s.buyer.ID, models.NotificationTypeTransactionCompleted).First(&buyerNote).Error)
	s.Equal("Transaction Completed", buyerNote.Title)

	var sellerNote models.Notification
	s.Require().NoError(s.db.Where("user_id = ? AND type = ?", s.seller.ID, models.NotificationTypeTransactionCompleted).First(&sellerNote).Error)
	s.Equal("Payment Received", sellerNote.Title)

	// A second completion must not release funds or notify again.
	err = s.service.CompleteEscrow(escrow.ID)
	s.Require().ErrorIs(err, ErrEscrowAlreadyClosed)
	s.Len(s.payments.released, 1)
	s.Equal(int64(1), notificationCount(s.T(), s.db, s.buyer.ID, models.NotificationTypeTransactionCompleted))
	s.Equal(int64(1), notificationCount(s.T(), s.db, s.seller.ID, models.NotificationTypeTransactionCompleted))
}

func (s *EscrowServiceTestSuite) TestCompleteConcurrentCallsHaveOneWinner() {
	escrow := s.initiate()
	s.Require().NoError(s.service.MarkFunded(escrow.ID))

	envelope, err := s.service.CreateAgreement(&CreateAgreementRequest{
		ListingID: s.listing.ID,
		BuyerID:   s.buyer.ID,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.SignatureEnvelope{}).
		Where("id = ?", envelope.ID).
		Update("status", models.EnvelopeStatusCompleted).Error)

	results := make(chan error, 2)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < 2; i++ {
		go func() {
			start.Wait()
			results <- s.service.CompleteEscrow(escrow.ID)
		}()
	}
	start.Done()

	var wins int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			wins++
		} else {
			s.Require().ErrorIs(err, ErrEscrowAlreadyClosed)
		}
	}
	s.Equal(1, wins)

	s.Len(s.payments.released, 1)
	s.Equal(int64(1), notificationCount(s.T(), s.db, s.buyer.ID, models.NotificationTypeTransactionCompleted))
	s.Equal(int64(1), notificationCount(s.T(), s.db, s.seller.ID, models.NotificationTypeTransactionCompleted))
}

func (s *EscrowServiceTestSuite) TestLifecycleTransitions() {
	escrow := s.initiate()

	s.Require().NoError(s.service.MarkFunded(escrow.ID))
	s.Equal(int64(1), notificationCount(s.T(), s.db, s.buyer.ID, models.NotificationTypeEscrowUpdated))

	// A funded escrow can no longer be cancelled.
	err := s.service.Cancel(escrow.ID)
	s.Require().Error(err)
	s.Contains(err.Error(), "cannot move escrow")

	s.Require().NoError(s.service.Dispute(escrow.ID))

	var reloaded models.Escrow
	s.Require().NoError(s.db.First(&reloaded, escrow.ID).Error)
	s.Equal(models.EscrowStatusDisputed, reloaded.Status)

	// Disputed is terminal.
	err = s.service.MarkFunded(escrow.ID)
	s.Require().Error(err)
}

func (s *EscrowServiceTestSuite) TestCancelBeforeFunding() {
	escrow := s.initiate()
	s.Require().NoError(s.service.Cancel(escrow.ID))

	var reloaded models.Escrow
	s.Require().NoError(s.db.First(&reloaded, escrow.ID).Error)
	s.Equal(models.EscrowStatusCancelled, reloaded.Status)
}

func (s *EscrowServiceTestSuite) TestGetForUserRejectsNonParties() {
	escrow := s.initiate()
	outsider := createTestUser(s.T(), s.db, "outsider@example.com", models.UserRoleBuyer)

	_, err := s.service.GetForUser(escrow.ID, outsider.ID)
	s.Require().Error(err)

	found, err := s.service.GetForUser(escrow.ID, s.buyer.ID)
	s.Require().NoError(err)
	s.Equal(escrow.ID, found.ID)
}

func TestEscrowServiceSuite(t *testing.T) {
	suite.Run(t, new(EscrowServiceTestSuite))
}
