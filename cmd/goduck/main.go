package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"goduck/internal/admin"
	"goduck/internal/chat"
	"goduck/internal/config"
	"goduck/internal/db"
	"goduck/internal/duckchat"
	"goduck/internal/logger"
	"goduck/internal/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// websitePath is the static landing page served at the root route.
var websitePath = "website.html"

// customRecovery is a middleware that recovers from panics and handles http.ErrAbortHandler gracefully.
func customRecovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					log.Warn("Client connection aborted", "path", c.Request.URL.Path)
					c.Abort()
					return
				}

				log.Error("Panic recovered",
					"error", recovered,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// serveWebsite serves the landing page from disk. The asset is an external
// collaborator; when it is unreadable the route reports a server error.
func serveWebsite(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := os.ReadFile(websitePath)
		if err != nil {
			log.Error("Failed to read website asset", "path", websitePath, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Website asset unavailable"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
}

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, warning, err := config.LoadConfig("config.yaml")
	if err != nil {
		// Use a temporary logger for startup errors
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Debug)
	log.Info("Logger initialized", "debug_mode", cfg.Debug)
	if warning != "" {
		log.Warn(warning)
	}
	if cfg.Auth.Disabled {
		log.Warn("Authentication is DISABLED; every request is accepted. Intended for trusted internal deployments only.")
	}

	// Storage failures at startup are fatal.
	database, err := db.NewService(cfg.Database)
	if err != nil {
		log.Error("Error initializing database", "error", err)
		os.Exit(1)
	}
	log.Info("Database initialized", "type", cfg.Database.Type)

	if err := setupAndRunServer(cfg, log, database); err != nil {
		log.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func setupAndRunServer(cfg *config.Config, log *slog.Logger, database db.Service) error {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Use our custom recovery middleware instead of the default one.
	router.Use(customRecovery(log))
	if cfg.Debug {
		// This uses the default gin logger, which is fine for development.
		router.Use(gin.Logger())
	}
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
	}))

	router.GET("/", serveWebsite(log))

	engine := chat.NewDuckEngine(duckchat.NewClient(log))
	chatHandler := chat.NewHandler(engine, database, log)
	chat.SetupRoutes(router, chatHandler, cfg, database)
	admin.SetupRoutes(router, database, cfg, log)

	sched := scheduler.NewScheduler(database, log)
	sched.Start()
	defer sched.Stop()
	log.Info("Scheduler started")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}
	log.Info("Shutting down server...")

	// The context gives in-flight requests 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}
