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
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"speclens/internal/config"
	"speclens/internal/container"
	"speclens/internal/errors"
	"speclens/internal/migration"
	"speclens/ui"
)

// initDatabase opens the PostgreSQL connection when one is configured and
// brings the schema up to date.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.ConnString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Attach durable storage when a database is configured
	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if db != nil {
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
	} else {
		log.Println("No DATABASE_URL configured, reports are kept in memory")
	}

	// Operational sidecar listener
	if appConfig.Ops.Enabled {
		opsServer := ui.NewOpsServer(appContainer.ReportRepo, appContainer.Library.Describe())
		go func() {
			if err := opsServer.Start(":" + appConfig.Ops.Port); err != nil && err != http.ErrServerClosed {
				log.Printf("Ops listener failed: %v", err)
			}
		}()
	}

	// Primary API server
	server := ui.NewServer(appContainer.AuditService, appContainer.Exporters, int64(appConfig.Audit.MaxDocumentBytes)*2)
	httpServer := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Starting audit API on http://localhost:%s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Block until shutdown is requested
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
