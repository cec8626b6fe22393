package database

import (
	"log"
	"os"

	"kv-cache-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection and runs migrations
func InitDB() {
	var err error

	path := os.Getenv("KV_DB_PATH")
	if path == "" {
		path = "kv-cache.db"
	}

	// Open SQLite database file (created on first run). Using glebarez/sqlite
	// which is a pure Go implementation (no CGO required)
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Auto-migrate the schema (creates tables if they don't exist). Only
	// users and keyspace definitions are durable; entries stay in memory.
	err = DB.AutoMigrate(
		&models.User{},
		&models.Keyspace{},
	)

	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated successfully")
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
