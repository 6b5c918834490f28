// internal/database/connection.go
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/config"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/ledger"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.FarmRegistration{},
		&models.Actor{},
		&models.Product{},
		&models.ProductEvent{},
		&models.ProductIngredient{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",
		"CREATE INDEX IF NOT EXISTS idx_users_wallet ON users(wallet_address)",

		"CREATE INDEX IF NOT EXISTS idx_farm_registrations_status ON farm_registrations(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_farm_registrations_wallet ON farm_registrations(wallet_address)",

		"CREATE INDEX IF NOT EXISTS idx_products_owner_state ON products(current_owner, current_state)",
		"CREATE INDEX IF NOT EXISTS idx_products_destination ON products(destination_address) WHERE destination_address <> ''",
		"CREATE INDEX IF NOT EXISTS idx_product_events_product ON product_events(product_id, id)",
		"CREATE INDEX IF NOT EXISTS idx_product_ingredients_output ON product_ingredients(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_product_ingredients_input ON product_ingredients(ingredient_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData creates the bootstrap admin account and registers its
// wallet on the ledger so farm approvals can run from a fresh install.
func SeedInitialData(db *gorm.DB, chain *ledger.Ledger, cfg config.AdminConfig) error {
	if cfg.Wallet == "" || cfg.Password == "" {
		logrus.Info("Admin seed skipped: ADMIN_WALLET / ADMIN_PASSWORD not set")
		return nil
	}

	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", "Admin").Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Name:          cfg.Name,
			Email:         cfg.Email,
			Role:          "Admin",
			Phone:         cfg.Phone,
			WalletAddress: ledger.NormalizeAddress(cfg.Wallet),
		}

		if err := admin.SetPassword(cfg.Password); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		logrus.WithField("email", admin.Email).Info("Bootstrap admin user created")
	}

	err := chain.ClaimAdminRole(cfg.Wallet, cfg.Name, cfg.Phone)
	if err != nil && !errors.Is(err, ledger.ErrAlreadyRegistered) {
		return fmt.Errorf("failed to register admin on ledger: %w", err)
	}

	return nil
}
