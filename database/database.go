package database

import (
	"fmt"
	"log"

	config "github.com/mentorlink/mentorlink/configs"
	"github.com/mentorlink/mentorlink/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.MentorAvailability{},
		&models.SessionBooking{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.PaymentAccount{},
		&models.PremiumSubscription{},
		&models.ReferralEarning{},
		&models.WebhookEvent{},
		&models.AdminNotification{},
		&models.PayoutRequest{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedAdmin ensures the platform admin exists and returns it. The admin user
// owns the platform wallets that receive fees and subscription revenue.
func SeedAdmin() *models.User {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var admin models.User
	err := DB.Where("email = ?", adminEmail).First(&admin).Error
	if err == nil {
		log.Println("Admin user already exists.")
		return &admin
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
	}

	admin = models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
	}

	log.Println("✅ Admin user seeded successfully")
	return &admin
}
