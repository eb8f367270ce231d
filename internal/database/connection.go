// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/igxmarket/igx-backend/internal/config"
	"github.com/igxmarket/igx-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	err := db.AutoMigrate(
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
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_kyc_level ON users(kyc_level)",

		// Listing indexes
		"CREATE INDEX IF NOT EXISTS idx_listings_seller ON listings(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_listings_browse ON listings(status, is_public)",
		"CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category)",
		"CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at DESC)",

		// Access request indexes
		"CREATE INDEX IF NOT EXISTS idx_access_requests_listing_buyer ON access_requests(listing_id, buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_access_requests_status ON access_requests(status)",

		// Escrow indexes
		"CREATE INDEX IF NOT EXISTS idx_escrows_buyer ON escrows(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_escrows_seller ON escrows(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_escrows_listing_status ON escrows(listing_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_escrows_envelope ON escrows(envelope_id)",

		// Envelope indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_envelopes_provider_id ON signature_envelopes(envelope_id)",
		"CREATE INDEX IF NOT EXISTS idx_envelopes_parties ON signature_envelopes(buyer_id, seller_id)",

		// Notification and message indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, is_read)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_messages_receiver_read ON messages(receiver_id, is_read)",
		"CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id)",

		// KYC indexes
		"CREATE INDEX IF NOT EXISTS idx_kyc_documents_user ON kyc_documents(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_kyc_documents_status ON kyc_documents(status)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",

		// Full-text search index for browse
		"CREATE INDEX IF NOT EXISTS idx_listings_search ON listings USING GIN(to_tsvector('english', title || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var adminCount int64
	if err := db.Model(&models.User{}).
		Where("roles LIKE ?", "%admin%").
		Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}

	if adminCount == 0 {
		admin := &models.User{
			Email:      "admin@igxmarket.com",
			FirstName:  "System",
			LastName:   "Administrator",
			Roles:      models.RoleList{models.UserRoleAdmin},
			KYCLevel:   models.KYCLevelAdvanced,
			IsVerified: true,
		}

		if err := admin.SetPassword("Admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}
