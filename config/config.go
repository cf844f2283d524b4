package config

import (
	"fmt"
	"log"
	"os"

	"github.com/craftwl/whitelist-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB opens the PostgreSQL connection and migrates the schema.
func ConnectDB() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, password, dbName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	DB = db
	log.Println("Connected to PostgreSQL & migrated successfully")
}

// Migrate applies the schema. Split out of ConnectDB so tests can run it
// against their own database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.ResetPasswordToken{},
		&models.ActivationToken{},
		&models.Survey{},
		&models.SurveySlot{},
		&models.Question{},
		&models.Option{},
		&models.QuestionImage{},
		&models.Response{},
		&models.ResponseDetail{},
		&models.ResponseScore{},
		&models.Whitelist{},
		&models.Guarantee{},
		&models.Setting{},
	)
	if err != nil {
		return err
	}

	// One in-flight response per user. The handlers check this invariant too,
	// but the partial index turns a lost race into a constraint error instead
	// of a silent duplicate.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_responses_in_flight ON responses (user_id) WHERE NOT is_completed`,
	).Error
}
