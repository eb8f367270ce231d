// internal/services/signature_provider.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/igxmarket/igx-backend/internal/config"
	"github.com/igxmarket/igx-backend/internal/models"
	"github.com/igxmarket/igx-backend/internal/utils"
)

// EnvelopeDetails is what the e-signature provider hands back on envelope
// creation: an opaque envelope id and one signing link per party.
type EnvelopeDetails struct {
	EnvelopeID       string
	DocumentType     string
	SigningURLBuyer  string
	SigningURLSeller string
}

type SignatureProvider interface {
	CreateEnvelope(listing *models.Listing, buyer, seller *models.User) (*EnvelopeDetails, error)
}

// docusignProvider synthesizes envelopes against the DocuSign demo
// environment. Status changes arrive through the callback endpoint.
type docusignProvider struct {
	config *config.Config
}

func NewDocuSignProvider(cfg *config.Config) SignatureProvider {
	return &docusignProvider{config: cfg}
}

func (p *docusignProvider) CreateEnvelope(listing *models.Listing, buyer, seller *models.User) (*EnvelopeDetails, error) {
	ds := p.config.DocuSign
	if ds.IntegrationKey == "" || ds.SecretKey == "" || ds.UserID == "" {
		return nil, errors.New("DocuSign credentials not configured")
	}

	suffix, err := utils.GenerateRandomString(9)
	if err != nil {
		return nil, fmt.Errorf("failed to generate envelope id: %w", err)
	}
	envelopeID := fmt.Sprintf("envelope_%d_%s", time.Now().UnixMilli(), suffix)

	return &EnvelopeDetails{
		EnvelopeID:       envelopeID,
		DocumentType:     "purchase_agreement",
		SigningURLBuyer:  fmt.Sprintf("%s/signing/%s/buyer", ds.BaseURL, envelopeID),
		SigningURLSeller: fmt.Sprintf("%s/signing/%s/seller", ds.BaseURL, envelopeID),
	}, nil
}
