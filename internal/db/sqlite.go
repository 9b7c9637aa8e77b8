package db

import (
	"crypto/rand"
	"encoding/hex"
	"log"

	"github.com/dwrenn/tracktalk/internal/db/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB initializes the SQLite database connection and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate all models
	if err := database.AutoMigrate(&models.Session{}, &models.Config{}); err != nil {
		return nil, err
	}

	// Ensure cookie signing secret exists (generated on first run)
	ensureCookieSecret(database)

	return database, nil
}

// ensureCookieSecret generates the session cookie signing secret if not exists
func ensureCookieSecret(db *gorm.DB) {
	var config models.Config
	result := db.Where("key = ?", "cookie_secret").First(&config)

	if result.Error != nil {
		secretBytes := make([]byte, 32)
		rand.Read(secretBytes)

		db.Create(&models.Config{
			Key:   "cookie_secret",
			Value: hex.EncodeToString(secretBytes),
		})
		log.Printf("🔑 Generated new session cookie secret")
	}
}

// CookieSecret retrieves the cookie signing secret from the database.
// Returns nil if the secret is missing or corrupt.
func CookieSecret(db *gorm.DB) []byte {
	var config models.Config
	db.Where("key = ?", "cookie_secret").First(&config)
	secret, err := hex.DecodeString(config.Value)
	if err != nil || len(secret) == 0 {
		return nil
	}
	return secret
}
