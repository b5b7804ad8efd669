package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kameliyaaivanova/BlogAPI/internal/activity"
	"github.com/kameliyaaivanova/BlogAPI/internal/auth"
	"github.com/kameliyaaivanova/BlogAPI/internal/config"
	"github.com/kameliyaaivanova/BlogAPI/internal/es"
	"github.com/kameliyaaivanova/BlogAPI/internal/handlers"
	"github.com/kameliyaaivanova/BlogAPI/internal/logging"
	"github.com/kameliyaaivanova/BlogAPI/internal/mykafka"
	"github.com/kameliyaaivanova/BlogAPI/internal/seed"
	"github.com/kameliyaaivanova/BlogAPI/internal/stats"
	httpserver "github.com/kameliyaaivanova/BlogAPI/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if configuration.SKIP_SEED != "true" {
		if err := seed.Run(db); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	issuer := &auth.Issuer{
		AccessSecret:  []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}
	authService := auth.NewService(db, issuer)

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		logger.Warn("elasticsearch unavailable, post search disabled", "error", err)
		esClient = nil
	}

	reporter := activity.NewReporter(prod, logger, 0, 0)
	statsClient := stats.NewClient(configuration.STATS_SERVICE_URL)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	e.Use(reporter.Middleware())

	deps := httpserver.Deps{
		Issuer:            issuer,
		AuthHandler:       &handlers.AuthHandler{DB: db, Auth: authService, Producer: prod},
		UserHandler:       &handlers.UserHandler{DB: db, Store: authService.Store},
		RoleHandler:       &handlers.RoleHandler{DB: db},
		PermissionHandler: &handlers.PermissionHandler{DB: db},
		CategoryHandler:   &handlers.CategoryHandler{DB: db},
		PostHandler:       &handlers.PostHandler{DB: db, Producer: prod, ES: esClient},
		FileHandler:       &handlers.FileHandler{DB: db},
		StatsHandler:      &handlers.StatsHandler{Client: statsClient},
	}
	httpserver.Register(e, &deps)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	handlers.StartFileJanitor(janitorCtx, db, statsClient, time.Hour)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	stopJanitor()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	reporter.Close()

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
