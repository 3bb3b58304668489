package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lingua-service/internal/db"
	"lingua-service/internal/handlers"
	"lingua-service/internal/metrics"
	"lingua-service/internal/middleware"
	"lingua-service/internal/observability"
	"lingua-service/internal/rabbitmq"
	"lingua-service/internal/repositories"
	"lingua-service/internal/services"
	"lingua-service/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	dsn := os.Getenv("DB_DSN")
	jwtSecret := os.Getenv("JWT_SECRET")
	amqpURL := os.Getenv("AMQP_URL")
	logsExchange := getEnv("LOGS_EXCHANGE", "logs.events")
	serviceName := getEnv("SERVICE_NAME", "lingua-service")
	environment := getEnv("ENVIRONMENT", "local")
	chatAPIKey := os.Getenv("CHAT_API_KEY")
	chatAPISecret := os.Getenv("CHAT_API_SECRET")
	cookieSecure := os.Getenv("COOKIE_SECURE") == "true"
	port := getEnv("PORT", "8080")

	if dsn == "" || jwtSecret == "" {
		log.Fatal("DB_DSN and JWT_SECRET environment variables must be set")
	}
	if chatAPIKey == "" || chatAPISecret == "" {
		log.Printf("warning: CHAT_API_KEY/CHAT_API_SECRET not set; chat tokens will not verify against the provider")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	publisher := rabbitmq.NewNoopPublisher()
	if amqpURL == "" {
		log.Printf("warning: AMQP_URL not set; event publishing disabled")
	} else {
		pub, err := rabbitmq.NewPublisher(amqpURL, "app.events")
		if err != nil {
			log.Printf("warning: failed to initialize RabbitMQ publisher: %v", err)
		} else {
			publisher = pub
		}
	}
	defer publisher.Close()

	auditPublisher := rabbitmq.NewNoopPublisher()
	if amqpURL == "" {
		log.Printf("warning: AMQP_URL not set; audit publishing disabled")
	} else {
		pub, err := rabbitmq.NewPublisher(amqpURL, logsExchange)
		if err != nil {
			log.Printf("warning: failed to initialize RabbitMQ audit publisher: %v", err)
		} else {
			auditPublisher = pub
		}
	}
	defer auditPublisher.Close()

	userRepo := repositories.NewUserRepository(database, publisher)
	friendRepo := repositories.NewFriendRepository(database, publisher)
	chatTokens := services.NewChatTokenService(chatAPIKey, chatAPISecret, time.Hour)

	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, serviceName, environment)
	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret, cookieSecure)
	userHandler := handlers.NewUserHandler(userRepo)
	friendHandler := handlers.NewFriendHandler(friendRepo, userRepo, auditEmitter)
	chatHandler := handlers.NewChatHandler(chatTokens)

	observability.InitMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterFriendMetrics()

	r := gin.Default()
	r.Use(gin.Logger(), gin.Recovery(), middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	auth := api.Group("", middleware.Auth(jwtSecret, userRepo))
	auth.GET("/auth/me", authHandler.GetMe)
	auth.POST("/auth/onboarding", authHandler.Onboard)
	auth.PATCH("/auth/profile", authHandler.UpdateProfile)
	auth.DELETE("/auth/delete-account", authHandler.DeleteAccount)

	auth.GET("/users", userHandler.Recommend)
	auth.GET("/users/search", userHandler.Search)
	auth.GET("/users/friends", friendHandler.ListFriends)
	auth.DELETE("/users/friends/:id", friendHandler.DeleteFriend)
	auth.POST("/users/friend-request/:id", friendHandler.SendRequest)
	auth.GET("/users/friend-request", friendHandler.ListIncoming)
	auth.GET("/users/outgoing-friend-request", friendHandler.ListOutgoing)
	auth.PUT("/users/friend-request/:id/accept", friendHandler.AcceptRequest)
	auth.PUT("/users/friend-request/:id/decline", friendHandler.DeclineRequest)

	auth.GET("/chat/token", chatHandler.GetToken)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
