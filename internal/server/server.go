package server

import (
	"context"
	"strings"
	"time"

	"acadex.dev/acadex/internal/cache"
	"acadex.dev/acadex/internal/config"
	"acadex.dev/acadex/internal/handler"
	"acadex.dev/acadex/internal/middleware"
	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/internal/repository"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/internal/session"
	"acadex.dev/acadex/pkg/logger"
	"acadex.dev/acadex/pkg/mailer"
	"acadex.dev/acadex/pkg/response"
	"acadex.dev/acadex/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	cron   *cron.Cron
	log    *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		return nil, err
	}
	mail := mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)
	meiliClient := meilisearch.New(cfg.MeiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	layoutRepo := repository.NewLayoutRepository(db)

	sessionStore := session.NewRedisStore(redisClient)
	sessions := session.NewManager(sessionStore, cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpireMin, cfg.RefreshTokenExpireDay)
	blobCache := cache.New(redisClient)

	searchSvc := service.NewSearchService(meiliClient, log)
	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	authSvc := service.NewAuthService(userRepo, sessions, mail, cfg.ActivationSecret, cfg.PasswordSecret)
	userSvc := service.NewUserService(userRepo, sessions, mail, imageStorage, cfg.EmailSecret)
	adminSvc := service.NewAdminService(userRepo, sessions, mail, notificationSvc, cfg.PasswordSecret, cfg.Origin)
	courseSvc := service.NewCourseService(courseRepo, userRepo, notificationSvc, mail, imageStorage, searchSvc, blobCache)
	orderSvc := service.NewOrderService(orderRepo, courseRepo, userRepo, sessions, notificationSvc, mail)
	layoutSvc := service.NewLayoutService(layoutRepo, imageStorage, blobCache)
	analyticsSvc := service.NewAnalyticsService(userRepo, courseRepo, orderRepo)

	secureCookies := cfg.AppEnv == "production"
	authHandler := handler.NewAuthHandler(authSvc, secureCookies)
	userHandler := handler.NewUserHandler(userSvc, secureCookies)
	adminHandler := handler.NewAdminHandler(adminSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, searchSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, log)
	layoutHandler := handler.NewLayoutHandler(layoutSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	setupCORS(router, cfg.AllowedOrigins)
	router.NoRoute(response.NoRoute)

	requireAuth := middleware.RequireAuth(sessions)
	staff := middleware.RequireRoles(model.RoleAdmin, model.RoleOwner)
	ownerOnly := middleware.RequireRoles(model.RoleOwner)

	api := router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/sign-up", authHandler.Register)
		users.POST("/activation", authHandler.Activate)
		users.POST("/sign-in", authHandler.Login)
		users.POST("/social-auth", authHandler.SocialAuth)
		users.GET("/refresh", authHandler.Refresh)
		users.POST("/forgot-password", authHandler.ForgotPassword)
		users.POST("/activation-password", authHandler.ResetPassword)

		users.GET("/logout", requireAuth, authHandler.Logout)
		users.GET("/me", requireAuth, userHandler.Me)
		users.PUT("/update-info", requireAuth, userHandler.UpdateInfo)
		users.PUT("/update-password", requireAuth, userHandler.UpdatePassword)
		users.POST("/update-email", requireAuth, userHandler.UpdateEmail)
		users.POST("/update-email-activation", requireAuth, userHandler.ConfirmEmail)
		users.PUT("/update-avatar", requireAuth, userHandler.UpdateAvatar)
		users.PUT("/update-background", requireAuth, userHandler.UpdateBackground)
		users.DELETE("/delete-account", requireAuth, userHandler.DeleteAccount)

		users.GET("/get-all-users", requireAuth, staff, adminHandler.ListUsers)
		users.GET("/get-users/:role", requireAuth, staff, adminHandler.ListUsersByRole)
		users.GET("/get-user/:id", requireAuth, staff, userHandler.GetUser)
		users.PUT("/block/:id", requireAuth, staff, adminHandler.Block)
		users.PUT("/unblock/:id", requireAuth, staff, adminHandler.Unblock)
		users.DELETE("/delete-user/:id", requireAuth, ownerOnly, adminHandler.DeleteUser)
		users.PUT("/update-role/:id", requireAuth, ownerOnly, adminHandler.UpdateRole)
		users.POST("/change-password/:id", requireAuth, ownerOnly, adminHandler.ChangePassword)
	}

	courses := api.Group("/courses")
	{
		courses.GET("/get-courses", courseHandler.GetAll)
		courses.GET("/get-course/:id", courseHandler.Get)
		courses.GET("/search", courseHandler.Search)

		courses.POST("/upload-course", requireAuth, staff, courseHandler.Upload)
		courses.PUT("/update-course/:id", requireAuth, staff, courseHandler.Update)
		courses.DELETE("/delete-course/:id", requireAuth, staff, courseHandler.Delete)

		courses.GET("/get-course-content/:id", requireAuth, courseHandler.GetContent)
		courses.PUT("/add-question", requireAuth, courseHandler.AddQuestion)
		courses.PUT("/add-answer", requireAuth, courseHandler.AddAnswer)
		courses.PUT("/add-review/:id", requireAuth, courseHandler.AddReview)
		courses.PUT("/add-review-reply", requireAuth, staff, courseHandler.AddReviewReply)
	}

	orders := api.Group("/orders")
	{
		orders.POST("/create-order", requireAuth, orderHandler.Create)
		orders.GET("/get-all-orders", requireAuth, ownerOnly, orderHandler.GetAll)
	}

	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", notificationHandler.List)
		notifications.PUT("/read-one/:id", notificationHandler.ReadOne)
		notifications.PUT("/read-all", notificationHandler.ReadAll)
		notifications.PUT("/unread-one/:id", notificationHandler.UnreadOne)
		notifications.PUT("/unread-all", notificationHandler.UnreadAll)
		notifications.GET("/ws", notificationHandler.Stream)
	}

	layout := api.Group("/layout")
	{
		layout.GET("/get-layout", layoutHandler.Get)
		layout.POST("/create-layout", requireAuth, ownerOnly, layoutHandler.Create)
		layout.PUT("/add-layout", requireAuth, ownerOnly, layoutHandler.Add)
		layout.PUT("/edit-layout", requireAuth, ownerOnly, layoutHandler.Edit)
		layout.DELETE("/delete-layout", requireAuth, ownerOnly, layoutHandler.Delete)
	}

	analytics := api.Group("/analytics", requireAuth, ownerOnly)
	{
		analytics.GET("/get-users-analytics", analyticsHandler.Users)
		analytics.GET("/get-courses-analytics", analyticsHandler.Courses)
		analytics.GET("/get-orders-analytics", analyticsHandler.Orders)
	}

	// Midnight purge of read notifications past retention.
	c := cron.New()
	if _, err := c.AddFunc("0 0 * * *", func() {
		purged, err := notificationSvc.PurgeRead(context.Background())
		if err != nil {
			log.Error("notification purge failed", zap.Error(err))
			return
		}
		log.Info("notification purge completed", zap.Int64("purged", purged))
	}); err != nil {
		return nil, err
	}

	return &Server{
		engine: router,
		cron:   c,
		log:    log,
	}, nil
}

func (s *Server) Run(addr string) error {
	s.cron.Start()
	defer s.cron.Stop()
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := strings.Split(allowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
