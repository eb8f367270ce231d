// internal/services/permission_service.go
package services

import (
	"github.com/google/uuid"

	"github.com/igxmarket/igx-backend/internal/models"
)

// Identity is the authenticated caller, resolved once per request from the
// token and passed explicitly into every service call. Ownership checks trust
// this value and nothing else.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Roles    models.RoleList
	KYCLevel models.KYCLevel
}

// Capability is a closed set of permissioned actions. Role checks go through
// Can instead of ad-hoc membership tests so the role->action mapping lives in
// one place.
type Capability string

const (
	CapManageListings      Capability = "listings.manage"
	CapRequestAccess       Capability = "access_requests.create"
	CapDecideAccessRequest Capability = "access_requests.decide"
	CapSignNDA             Capability = "access_requests.sign_nda"
	CapInitiatePayment     Capability = "escrow.initiate_payment"
	CapCreateAgreement     Capability = "escrow.create_agreement"
	CapCompleteEscrow      Capability = "escrow.complete"
	CapUploadKYC           Capability = "kyc.upload"
	CapReviewKYC           Capability = "kyc.review"
	CapModerateListings    Capability = "listings.moderate"
	CapManageUsers         Capability = "users.manage"
	CapSendMessages        Capability = "messages.send"
)

var capabilityRoles = map[Capability][]models.UserRole{
	CapManageListings:      {models.UserRoleSeller},
	CapRequestAccess:       {models.UserRoleBuyer},
	CapDecideAccessRequest: {models.UserRoleSeller},
	CapSignNDA:             {models.UserRoleBuyer},
	CapInitiatePayment:     {models.UserRoleBuyer},
	CapCreateAgreement:     {models.UserRoleBuyer, models.UserRoleSeller},
	CapCompleteEscrow:      {models.UserRoleBuyer, models.UserRoleSeller, models.UserRoleAdmin},
	CapUploadKYC:           {models.UserRoleBuyer, models.UserRoleSeller},
	CapReviewKYC:           {models.UserRoleAdmin},
	CapModerateListings:    {models.UserRoleAdmin},
	CapManageUsers:         {models.UserRoleAdmin},
	CapSendMessages:        {models.UserRoleBuyer, models.UserRoleSeller, models.UserRoleAdmin},
}

// Can reports whether the identity holds a role granting the capability.
// Admins pass every check.
func (i Identity) Can(capability Capability) bool {
	if i.Roles.Has(models.UserRoleAdmin) {
		return true
	}

	allowed, exists := capabilityRoles[capability]
	if !exists {
		return false
	}

	for _, role := range allowed {
		if i.Roles.Has(role) {
			return true
		}
	}
	return false
}

func (i Identity) IsAdmin() bool {
	return i.Roles.Has(models.UserRoleAdmin)
}
