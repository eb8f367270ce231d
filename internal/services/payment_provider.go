// internal/services/payment_provider.go
package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/customer"

	"github.com/igxmarket/igx-backend/internal/config"
)

// CheckoutSession is the hosted payment page returned by the provider.
type CheckoutSession struct {
	SessionID       string `json:"session_id"`
	URL             string `json:"url"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
}

// PaymentProvider is the escrow orchestrator's view of the payment gateway.
type PaymentProvider interface {
	CreateCustomer(email, name string) (string, error)
	CreateCheckoutSession(customerID string, amount float64, productName string, metadata map[string]string, successURL, cancelURL string) (*CheckoutSession, error)
	// ReleaseFunds is invoked when an escrow completes. No transfer to the
	// seller happens here; the transition is bookkeeping-only and payout
	// remains a manual operation.
	ReleaseFunds(paymentIntentID string, amount float64) error
}

type stripeProvider struct {
	config *config.Config
}

func NewStripeProvider(cfg *config.Config) PaymentProvider {
	stripe.Key = cfg.Payment.StripeSecretKey
	return &stripeProvider{config: cfg}
}

func (p *stripeProvider) CreateCustomer(email, name string) (string, error) {
	if p.config.Payment.StripeSecretKey == "" {
		return "", errors.New("stripe secret key not configured")
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	return cust.ID, nil
}

func (p *stripeProvider) CreateCheckoutSession(customerID string, amount float64, productName string, metadata map[string]string, successURL, cancelURL string) (*CheckoutSession, error) {
	if p.config.Payment.StripeSecretKey == "" {
		return nil, errors.New("stripe secret key not configured")
	}

	// Stripe amounts are in cents
	amountInCents := int64(amount * 100)

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.config.Payment.Currency),
					UnitAmount: stripe.Int64(amountInCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(productName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if sess.URL == "" {
		return nil, errors.New("failed to create checkout session")
	}

	result := &CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}
	if sess.PaymentIntent != nil {
		result.PaymentIntentID = sess.PaymentIntent.ID
	}

	return result, nil
}

func (p *stripeProvider) ReleaseFunds(paymentIntentID string, amount float64) error {
	// No transfer is issued here. Funds held against the payment intent are
	// released to the seller out-of-band by operations staff.
	logrus.WithFields(logrus.Fields{
		"payment_intent": paymentIntentID,
		"amount":         amount,
	}).Info("Escrow release recorded (transfer handled out-of-band)")
	return nil
}
