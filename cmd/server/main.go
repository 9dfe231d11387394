package main

import (
	"context"
	"log"

	"acadex.dev/acadex/internal/config"
	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/server"
	"acadex.dev/acadex/pkg/database"
	"acadex.dev/acadex/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	appLog, sync := logger.New("info", cfg.AppEnv == "production")
	defer sync()

	db, err := database.Connect(database.Options{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
	})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedOwnerUser(db, appLog, cfg.OwnerEmail, cfg.OwnerPassword); err != nil {
			log.Fatalf("failed to seed owner user: %v", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}

	srv, err := server.New(cfg, appLog, db, redisClient)
	if err != nil {
		log.Fatalf("server setup failed: %v", err)
	}

	appLog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserCourse{},
		&model.UserCreatedCourse{},
		&model.UserAction{},
		&model.Course{},
		&model.CourseBenefit{},
		&model.CoursePrerequisite{},
		&model.CourseContent{},
		&model.ContentLink{},
		&model.Question{},
		&model.Answer{},
		&model.Review{},
		&model.ReviewReply{},
		&model.CourseStudent{},
		&model.CourseUpdate{},
		&model.Order{},
		&model.Notification{},
		&model.Layout{},
		&model.BannerImage{},
		&model.FAQItem{},
		&model.CategoryItem{},
		&model.SocialLink{},
		&model.NavItem{},
	)
}

// seedOwnerUser makes sure a local environment always has an owner to
// reach the gated endpoints with.
func seedOwnerUser(db *gorm.DB, appLog *zap.Logger, email, password string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		appLog.Info("owner user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	owner := model.User{
		Email:      email,
		Password:   string(hashed),
		FirstName:  "Owner",
		Role:       model.RoleOwner,
		IsVerified: true,
	}
	return db.Create(&owner).Error
}
