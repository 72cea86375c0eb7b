package database

import (
	"fmt"
	"log"
	"strings"

	config "messenger-backend/configs"
	"messenger-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := config.Config("DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
	return db
}

func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedUsers creates development accounts from SEED_USER_LOGINS (comma separated).
// User records are normally written by the identity service; this exists so the
// messenger can be exercised standalone.
func SeedUsers(db *gorm.DB) {
	logins := config.Config("SEED_USER_LOGINS")
	if logins == "" {
		return
	}
	password := config.Config("SEED_USER_PASSWORD")
	if password == "" {
		password = "changeme"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash seed password: %v", err)
	}

	for _, login := range strings.Split(logins, ",") {
		login = strings.TrimSpace(login)
		if login == "" {
			continue
		}

		var count int64
		if err := db.Model(&models.User{}).Where("login = ?", login).Count(&count).Error; err != nil {
			log.Fatalf("🔥 Failed to check for seed user %s: %v", login, err)
		}
		if count > 0 {
			continue
		}

		user := models.User{
			ID:           uuid.New(),
			Login:        login,
			PasswordHash: string(hashedPassword),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("🔥 Failed to seed user %s: %v", login, err)
		}
		log.Printf("✅ Seeded user %s (%s)", login, user.ID)
	}
}
