// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Authorization
	KeyAccessDenied = "access.denied"

	// Listings
	KeyListingCreated  = "listing.created"
	KeyListingUpdated  = "listing.updated"
	KeyListingDeleted  = "listing.deleted"
	KeyListingNotFound = "listing.not_found"
	KeyListingApproved = "listing.approved"
	KeyListingRejected = "listing.rejected"

	// Access requests
	KeyAccessRequestCreated  = "access_request.created"
	KeyAccessRequestApproved = "access_request.approved"
	KeyAccessRequestRejected = "access_request.rejected"
	KeyAccessRequestNotFound = "access_request.not_found"
	KeyNDASigned             = "access_request.nda_signed"

	// Escrow
	KeyEscrowNotFound  = "escrow.not_found"
	KeyEscrowCompleted = "escrow.completed"
	KeyEscrowUpdated   = "escrow.updated"

	// Envelopes
	KeyEnvelopeCreated  = "envelope.created"
	KeyEnvelopeNotFound = "envelope.not_found"

	// Notifications
	KeyNotificationNotFound = "notification.not_found"
	KeyNotificationRead     = "notification.read"
	KeyNotificationDeleted  = "notification.deleted"

	// KYC
	KeyKYCUploaded = "kyc.uploaded"
	KeyKYCReviewed = "kyc.reviewed"
	KeyKYCNotFound = "kyc.not_found"

	// Messages
	KeyMessageSent     = "message.sent"
	KeyMessageNotFound = "message.not_found"

	// Documents
	KeyDocumentNotFound = "document.not_found"
	KeyDocumentUploaded = "document.uploaded"

	// Users
	KeyUserNotFound = "user.not_found"
	KeyUserVerified = "user.verified"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
