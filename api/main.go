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
	"github.com/oakmail/mailcore/api/auth"
	"github.com/oakmail/mailcore/api/handlers"
	"github.com/oakmail/mailcore/api/middleware"
	"github.com/oakmail/mailcore/store"
)

type Config struct {
	Port         string
	MongoURL     string
	DatabaseName string
	JWTSecret    string
}

func main() {
	config := &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURL:     getEnv("MONGO_URL", "mongodb://localhost:27017"),
		DatabaseName: getEnv("DB_NAME", "mailcore"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.Connect(ctx, config.MongoURL, config.DatabaseName)
	if err != nil {
		log.Fatal("Failed to connect to store:", err)
	}
	log.Println("Connected to mail store database:", config.DatabaseName)

	issuer := auth.NewIssuer(config.JWTSecret, 24*time.Hour)

	authHandler := handlers.NewAuthHandler(st, issuer)
	userHandler := handlers.NewUserHandler(st)
	mailboxHandler := handlers.NewMailboxHandler(st)
	messageHandler := handlers.NewMessageHandler(st.DB, st)
	addressHandler := handlers.NewAddressHandler(st)

	router := gin.Default()

	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorHandling())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.POST("/api/auth/login", authHandler.Login)

	api := router.Group("/api")
	api.Use(middleware.Auth(issuer))
	{
		users := api.Group("/users")
		{
			users.GET("", userHandler.GetUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)

			users.GET("/:id/addresses", addressHandler.GetUserAddresses)
			users.POST("/:id/addresses", addressHandler.CreateUserAddress)
			users.GET("/:id/addresses/:addressId", addressHandler.GetUserAddress)
			users.PUT("/:id/addresses/:addressId", addressHandler.UpdateUserAddress)
			users.DELETE("/:id/addresses/:addressId", addressHandler.DeleteUserAddress)

			users.GET("/:id/mailboxes", mailboxHandler.GetUserMailboxes)
			users.POST("/:id/mailboxes", mailboxHandler.CreateMailbox)
			users.GET("/:id/mailboxes/:mailboxId", mailboxHandler.GetMailbox)
			users.PUT("/:id/mailboxes/:mailboxId", mailboxHandler.UpdateMailbox)
			users.DELETE("/:id/mailboxes/:mailboxId", mailboxHandler.DeleteMailbox)

			users.GET("/:id/mailboxes/:mailboxId/messages", messageHandler.GetMessages)
			users.GET("/:id/mailboxes/:mailboxId/messages/:messageId", messageHandler.GetMessage)
			users.PUT("/:id/mailboxes/:mailboxId/messages/:messageId", messageHandler.UpdateMessage)
			users.DELETE("/:id/mailboxes/:mailboxId/messages/:messageId", messageHandler.DeleteMessage)

			users.GET("/:id/mailboxes/:mailboxId/messages/:messageId/attachments/:attachmentId", messageHandler.GetAttachment)

			users.GET("/:id/search", messageHandler.SearchMessages)

			users.POST("/:id/quota/reset", userHandler.ResetUserQuota)
		}

		addresses := api.Group("/addresses")
		{
			addresses.GET("", addressHandler.GetAddresses)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
	})

	srv := &http.Server{
		Addr:    ":" + config.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Mail API server started on port %s", config.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
