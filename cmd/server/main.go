// Command server runs the LMTP delivery listener and the HTTP API
// together against one Mongo-backed store, reading its configuration via
// config.Load.
package main

import (
	"context"
	"flag"
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
	"github.com/oakmail/mailcore/config"
	"github.com/oakmail/mailcore/lmtp"
	"github.com/oakmail/mailcore/store"
)

func main() {
	configPath := flag.String("config", "", "path to mailcore.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Connect(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to store: %v", err)
	}
	log.Printf("connected to store database %s", cfg.Mongo.Database)

	lmtpServer, err := lmtp.NewServer(&lmtp.Config{
		Host:         cfg.LMTP.Host,
		Port:         cfg.LMTP.Port,
		Banner:       cfg.LMTP.Banner,
		SpamHeader:   cfg.LMTP.SpamHeader,
		MaxSize:      cfg.LMTP.MaxSize,
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		Enabled:      true,
	}, st)
	if err != nil {
		log.Fatalf("failed to build lmtp server: %v", err)
	}

	go func() {
		if err := lmtpServer.Start(); err != nil {
			log.Fatalf("lmtp server exited: %v", err)
		}
	}()

	issuer := auth.NewIssuer(cfg.API.JWTSecret, 24*time.Hour)
	router := buildRouter(st, issuer)

	apiServer := &http.Server{Addr: ":" + cfg.API.Port, Handler: router}
	go func() {
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server exited: %v", err)
		}
	}()
	log.Printf("api listening on :%s, lmtp listening on %s:%d", cfg.API.Port, cfg.LMTP.Host, cfg.LMTP.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
	if err := lmtpServer.Stop(); err != nil {
		log.Printf("lmtp shutdown error: %v", err)
	}
}

func buildRouter(st *store.Store, issuer *auth.Issuer) *gin.Engine {
	authHandler := handlers.NewAuthHandler(st, issuer)
	userHandler := handlers.NewUserHandler(st)
	mailboxHandler := handlers.NewMailboxHandler(st)
	messageHandler := handlers.NewMessageHandler(st.DB, st)
	addressHandler := handlers.NewAddressHandler(st)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorHandling())
	router.Use(gin.Recovery())

	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
	})

	api := router.Group("/api")
	api.Use(middleware.Auth(issuer))
	{
		users := api.Group("/users")
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

		addresses := api.Group("/addresses")
		addresses.GET("", addressHandler.GetAddresses)
	}

	return router
}
