package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHTTP "postpilot/internal/controller/http"
	"postpilot/internal/publisher"
	"postpilot/internal/repo/persistent"
	"postpilot/internal/scheduler"
	"postpilot/internal/usecase"
	"postpilot/pkg/config"
	"postpilot/pkg/jwt"
	"postpilot/pkg/logger"
	"postpilot/pkg/middleware"
	"postpilot/pkg/queue"
	"postpilot/pkg/s3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "postpilot/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, s3Client *s3.Client, queueClient *queue.Client, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	// Initialize repositories
	postRepo := persistent.NewPostRepository(db)
	userRepo := persistent.NewUserRepository(db)
	accountRepo := persistent.NewSocialAccountRepository(db)

	// Initialize use cases
	postUseCase := usecase.NewPostUseCase(postRepo, s3Client, log)
	authUseCase := usecase.NewAuthUseCase(userRepo, jwtService, log)
	socialUseCase := usecase.NewSocialUseCase(accountRepo, redisClient, log)

	// Initialize platform publishers
	httpClient := &http.Client{Timeout: cfg.PublishTimeout}
	registry := publisher.NewRegistry(
		publisher.NewMicroblogPublisher(httpClient, publisher.DefaultMicroblogBaseURL, log),
		publisher.NewProfessionalNetworkPublisher(httpClient, publisher.DefaultProfessionalNetworkBaseURL, log),
		publisher.NewPhotoNetworkPublisher(httpClient, publisher.DefaultPhotoNetworkBaseURL, log),
	)

	// Initialize scheduler
	orchestrator := scheduler.NewOrchestrator(postRepo, accountRepo, registry, queueClient, log, cfg.PublishTimeout)
	sched := scheduler.New(postRepo, orchestrator, cfg.SchedulerInterval, log)
	sched.Start()

	// Initialize HTTP handlers
	postHandler := apiHTTP.NewPostHandler(postUseCase, log)
	authHandler := apiHTTP.NewAuthHandler(authUseCase, log)
	socialHandler := apiHTTP.NewSocialHandler(socialUseCase, log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public auth routes
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow))

	{
		api.GET("/auth/me", authHandler.Me)

		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts/:id", postHandler.GetPost)
		api.GET("/posts", postHandler.ListPosts)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.POST("/media", postHandler.UploadMedia)

		api.GET("/social/accounts", socialHandler.ListConnections)
		api.PUT("/social/accounts/:platform", socialHandler.Connect)
		api.DELETE("/social/accounts/:platform", socialHandler.Disconnect)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Postpilot starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop the scheduler before closing its dependencies
	sched.Stop()

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Postpilot exited")
}
