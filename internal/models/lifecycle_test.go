// internal/models/lifecycle_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEscrowTransitions(t *testing.T) {
	cases := []struct {
		from    EscrowStatus
		to      EscrowStatus
		allowed bool
	}{
		{EscrowStatusInitiated, EscrowStatusFunded, true},
		{EscrowStatusInitiated, EscrowStatusCancelled, true},
		{EscrowStatusInitiated, EscrowStatusDisputed, true},
		{EscrowStatusInitiated, EscrowStatusCompleted, false},
		{EscrowStatusFunded, EscrowStatusCompleted, true},
		{EscrowStatusFunded, EscrowStatusDisputed, true},
		{EscrowStatusFunded, EscrowStatusCancelled, false},
		{EscrowStatusCompleted, EscrowStatusDisputed, false},
		{EscrowStatusDisputed, EscrowStatusFunded, false},
		{EscrowStatusCancelled, EscrowStatusFunded, false},
	}

	for _, tc := range cases {
		escrow := Escrow{Status: tc.from}
		assert.Equal(t, tc.allowed, escrow.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEnvelopeTransitions(t *testing.T) {
	cases := []struct {
		from    EnvelopeStatus
		to      EnvelopeStatus
		allowed bool
	}{
		{EnvelopeStatusSent, EnvelopeStatusDelivered, true},
		{EnvelopeStatusSent, EnvelopeStatusDeclined, true},
		{EnvelopeStatusSent, EnvelopeStatusVoided, true},
		{EnvelopeStatusSent, EnvelopeStatusCompleted, false},
		{EnvelopeStatusDelivered, EnvelopeStatusCompleted, true},
		{EnvelopeStatusCompleted, EnvelopeStatusVoided, false},
		{EnvelopeStatusDeclined, EnvelopeStatusDelivered, false},
		{EnvelopeStatusVoided, EnvelopeStatusCompleted, false},
	}

	for _, tc := range cases {
		envelope := SignatureEnvelope{Status: tc.from}
		assert.Equal(t, tc.allowed, envelope.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSigningURLFor(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()

	envelope := SignatureEnvelope{
		BuyerID:          buyerID,
		SellerID:         sellerID,
		SigningURLBuyer:  "https://sign.test/e/buyer",
		SigningURLSeller: "https://sign.test/e/seller",
	}

	url, ok := envelope.SigningURLFor(buyerID)
	assert.True(t, ok)
	assert.Equal(t, "https://sign.test/e/buyer", url)

	url, ok = envelope.SigningURLFor(sellerID)
	assert.True(t, ok)
	assert.Equal(t, "https://sign.test/e/seller", url)

	_, ok = envelope.SigningURLFor(uuid.New())
	assert.False(t, ok)
}

func TestGrantsDataRoomAccess(t *testing.T) {
	assert.False(t, (&AccessRequest{Status: AccessRequestStatusPending}).GrantsDataRoomAccess())
	assert.False(t, (&AccessRequest{Status: AccessRequestStatusApproved}).GrantsDataRoomAccess())
	assert.False(t, (&AccessRequest{Status: AccessRequestStatusRejected, NDASigned: true}).GrantsDataRoomAccess())
	assert.True(t, (&AccessRequest{Status: AccessRequestStatusApproved, NDASigned: true}).GrantsDataRoomAccess())
}

func TestRoleListRoundTrip(t *testing.T) {
	roles := RoleList{UserRoleBuyer, UserRoleSeller}

	value, err := roles.Value()
	assert.NoError(t, err)

	var decoded RoleList
	assert.NoError(t, decoded.Scan(value))
	assert.Equal(t, roles, decoded)
	assert.True(t, decoded.Has(UserRoleBuyer))
	assert.False(t, decoded.Has(UserRoleAdmin))
}
