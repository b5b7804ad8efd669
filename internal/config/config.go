package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

type Config struct {
	DB_HOST           string
	DB_PORT           string
	DB_USER           string
	DB_PASSWORD       string
	DB_NAME           string
	ES_URL            string
	ES_USER           string
	ES_PASSWORD       string
	JWT_SECRET        string
	REFRESH_SECRET    string
	KAFKA_ADDRESS     string
	STATS_SERVICE_URL string
	LOG_LEVEL         string
	SKIP_SEED         string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:           os.Getenv("DB_HOST"),
		DB_PORT:           os.Getenv("DB_PORT"),
		DB_USER:           os.Getenv("DB_USER"),
		DB_PASSWORD:       os.Getenv("DB_PASSWORD"),
		DB_NAME:           os.Getenv("DB_NAME"),
		ES_URL:            os.Getenv("ES_URL"),
		ES_USER:           os.Getenv("ES_USER"),
		ES_PASSWORD:       os.Getenv("ES_PASSWORD"),
		JWT_SECRET:        os.Getenv("JWT_SECRET"),
		REFRESH_SECRET:    os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:     os.Getenv("KAFKA_ADDRESS"),
		STATS_SERVICE_URL: os.Getenv("STATS_SERVICE_URL"),
		LOG_LEVEL:         os.Getenv("LOG_LEVEL"),
		SKIP_SEED:         os.Getenv("SKIP_SEED"),
	}

	if config.JWT_SECRET == "" || config.REFRESH_SECRET == "" {
		return nil, fmt.Errorf("JWT_SECRET and REFRESH_SECRET must be set")
	}

	return config, nil
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER, configuration.DB_PASSWORD,
		configuration.DB_HOST, configuration.DB_PORT, configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the platform persists.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Post{},
		&models.PostLike{},
		&models.File{},
	)
}
