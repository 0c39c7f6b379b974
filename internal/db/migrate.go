package db

import (
	"studenthub/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Models lists every table the service owns, in dependency order
func Models() []any {
	return []any{
		&domain.User{},              // Accounts
		&domain.Wallet{},            // One wallet per user
		&domain.WalletTransaction{}, // Ledger entries
		&domain.PaymentMethod{},     // Saved checkout methods
		&domain.ProjectOrder{},      // Project ordering
		&domain.Listing{},           // Marketplace
		&domain.CampusPost{},        // Campus feed
		&domain.PostComment{},       // Feed comments
		&domain.PostLike{},          // Feed likes
		&domain.Notification{},      // Notifications
		&domain.UserFlag{},          // Moderation reports
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(Models()...)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
