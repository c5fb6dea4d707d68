package database

import (
	"fmt"
	"log"
	"os"

	"elearn/models"
	courseModels "elearn/models/course"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	// Build the PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	// Open database connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	// Run database migrations
	runMigrations(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}

// Models lists every persisted model. Shared with the test helpers so the
// sqlite test schema cannot drift from the production one.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&courseModels.Course{},
		&courseModels.Section{},
		&courseModels.Lesson{},
		&courseModels.Enrollment{},
		&courseModels.LessonCompletion{},
		&courseModels.LessonWatch{},
		&courseModels.CertificateOutbox{},
	}
}
