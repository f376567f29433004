package database

import (
	"os"
	"time"

	"aeroops/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string, log *zap.Logger) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Info("connecting to DB", zap.Int("attempt", i), zap.Int("max", maxAttempts))

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Info("connected to DB")
			break
		}

		log.Warn("DB connection failed", zap.Error(err))
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("giving up connecting to DB", zap.Int("attempts", maxAttempts), zap.Error(err))
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Site{},
		&models.Drone{},
		&models.Deployment{},
		&models.GridAsset{},
		&models.GridAssetEvent{},
		&models.Document{},
		&models.Invoice{},
		&models.OnboardingInvite{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	createDefaultAdmin(log)
}

// admin comes from env only; everyone else arrives through onboarding invites
func createDefaultAdmin(log *zap.Logger) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@aeroops.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Warn("failed to check admin user", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Warn("failed to hash default admin password", zap.Error(err))
		return
	}

	admin := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		FullName:     "Platform Admin",
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Warn("failed to create default admin", zap.Error(err))
		return
	}

	log.Info("created default admin user", zap.String("email", email))
}
