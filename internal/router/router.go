// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/igxmarket/igx-backend/internal/config"
	"github.com/igxmarket/igx-backend/internal/handlers"
	"github.com/igxmarket/igx-backend/internal/middleware"
	"github.com/igxmarket/igx-backend/internal/services"
	"github.com/igxmarket/igx-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	paymentProvider := services.NewStripeProvider(cfg)
	signatureProvider := services.NewDocuSignProvider(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	listingService := services.NewListingService(db, notificationService)
	accessService := services.NewAccessService(db, notificationService)
	documentService := services.NewDocumentService(db, storageService, accessService)
	escrowService := services.NewEscrowService(db, cfg, paymentProvider, signatureProvider, notificationService)
	envelopeService := services.NewEnvelopeService(db, notificationService)
	kycService := services.NewKYCService(db, storageService, notificationService)
	messageService := services.NewMessageService(db, notificationService)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService)
	accessRequestHandler := handlers.NewAccessRequestHandler(accessService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	escrowHandler := handlers.NewEscrowHandler(escrowService)
	envelopeHandler := handlers.NewEnvelopeHandler(envelopeService, cfg)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	kycHandler := handlers.NewKYCHandler(kycService)
	messageHandler := handlers.NewMessageHandler(messageService)
	adminHandler := handlers.NewAdminHandler(adminService, listingService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
		}

		// Listing routes
		listings := v1.Group("/listings")
		{
			listings.GET("", middleware.OptionalAuth(), listingHandler.Browse)
			listings.GET("/mine", middleware.AuthRequired(), middleware.CapabilityRequired(services.CapManageListings), listingHandler.Mine)
			listings.GET("/:id", middleware.OptionalAuth(), listingHandler.Get)
			listings.GET("/:id/documents", middleware.OptionalAuth(), documentHandler.List)

			protected := listings.Group("")
			protected.Use(middleware.AuthRequired(), middleware.CapabilityRequired(services.CapManageListings))
			{
				protected.POST("", listingHandler.Create)
				protected.PUT("/:id", listingHandler.Update)
				protected.DELETE("/:id", listingHandler.Delete)
				protected.POST("/:id/submit", listingHandler.Submit)
				protected.POST("/:id/documents", middleware.UploadRateLimit(), documentHandler.Upload)
			}
		}

		// Data room documents
		documents := v1.Group("/documents")
		documents.Use(middleware.AuthRequired())
		{
			documents.GET("/:id/download", documentHandler.Download)
			documents.DELETE("/:id", middleware.CapabilityRequired(services.CapManageListings), documentHandler.Delete)
		}

		// Access request routes
		accessRequests := v1.Group("/access-requests")
		accessRequests.Use(middleware.AuthRequired())
		{
			accessRequests.POST("", middleware.CapabilityRequired(services.CapRequestAccess), accessRequestHandler.Create)
			accessRequests.GET("/sent", accessRequestHandler.Sent)
			accessRequests.GET("/received", middleware.CapabilityRequired(services.CapDecideAccessRequest), accessRequestHandler.Received)
			accessRequests.PUT("/:id/approve", middleware.CapabilityRequired(services.CapDecideAccessRequest), accessRequestHandler.Approve)
			accessRequests.PUT("/:id/reject", middleware.CapabilityRequired(services.CapDecideAccessRequest), accessRequestHandler.Reject)
			accessRequests.POST("/:id/sign-nda", middleware.CapabilityRequired(services.CapSignNDA), accessRequestHandler.SignNDA)
		}

		// Escrow routes
		escrow := v1.Group("/escrow")
		escrow.Use(middleware.AuthRequired())
		{
			escrow.POST("/initiate-payment", middleware.CapabilityRequired(services.CapInitiatePayment), escrowHandler.InitiatePayment)
			escrow.POST("/create-agreement", middleware.CapabilityRequired(services.CapCreateAgreement), escrowHandler.CreateAgreement)
			escrow.POST("/:id/complete", middleware.CapabilityRequired(services.CapCompleteEscrow), escrowHandler.Complete)
			escrow.GET("", escrowHandler.List)
			escrow.GET("/:id", escrowHandler.Get)
		}

		// Signature envelope routes
		envelopes := v1.Group("/envelopes")
		envelopes.Use(middleware.AuthRequired())
		{
			envelopes.GET("", envelopeHandler.List)
			envelopes.GET("/:id", envelopeHandler.Get)
		}

		// Signature provider callback (shared-secret auth, no user token)
		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.CallbackRateLimit())
		{
			webhooks.POST("/signature", envelopeHandler.Callback)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		// KYC routes
		kyc := v1.Group("/kyc")
		kyc.Use(middleware.AuthRequired())
		{
			kyc.POST("/documents", middleware.CapabilityRequired(services.CapUploadKYC), middleware.UploadRateLimit(), kycHandler.Upload)
			kyc.GET("/documents", kycHandler.List)
			kyc.GET("/documents/:id/download", kycHandler.Download)
		}

		// Message routes
		messages := v1.Group("/messages")
		messages.Use(middleware.AuthRequired())
		{
			messages.POST("", middleware.CapabilityRequired(services.CapSendMessages), messageHandler.Send)
			messages.GET("/conversations", messageHandler.Conversations)
			messages.GET("/conversations/:userId", messageHandler.Conversation)
			messages.PUT("/:id/read", messageHandler.MarkRead)
			messages.GET("/unread-count", messageHandler.UnreadCount)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.DashboardStats)

			adminUsers := admin.Group("/users")
			adminUsers.Use(middleware.CapabilityRequired(services.CapManageUsers))
			{
				adminUsers.GET("", adminHandler.ListUsers)
				adminUsers.PUT("/:id/roles", adminHandler.UpdateUserRoles)
				adminUsers.PUT("/:id/verify", adminHandler.SetUserVerified)
			}

			adminListings := admin.Group("/listings")
			adminListings.Use(middleware.CapabilityRequired(services.CapModerateListings))
			{
				adminListings.GET("/pending", adminHandler.PendingListings)
				adminListings.PUT("/:id/approve", adminHandler.ApproveListing)
				adminListings.PUT("/:id/reject", adminHandler.RejectListing)
			}

			adminKYC := admin.Group("/kyc")
			adminKYC.Use(middleware.CapabilityRequired(services.CapReviewKYC))
			{
				adminKYC.GET("/pending", kycHandler.ListPending)
				adminKYC.PUT("/:id/review", kycHandler.Review)
			}

			adminEscrows := admin.Group("/escrows")
			{
				adminEscrows.GET("", adminHandler.ListEscrows)
				adminEscrows.PUT("/:id/mark-funded", escrowHandler.MarkFunded)
				adminEscrows.PUT("/:id/dispute", escrowHandler.Dispute)
				adminEscrows.PUT("/:id/cancel", escrowHandler.Cancel)
			}

			admin.GET("/audit-logs", adminHandler.AuditLogs)
		}
	}

	return r
}
