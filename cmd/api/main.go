package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/zighstudio/salon-scheduler/internal/config"
	dbpkg "github.com/zighstudio/salon-scheduler/internal/db"
	"github.com/zighstudio/salon-scheduler/internal/notify"
	"github.com/zighstudio/salon-scheduler/internal/routes"
	"github.com/zighstudio/salon-scheduler/internal/timezone"
)

func main() {

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	if !timezone.IsValid(cfg.SalonTimezone) {
		log.Warn().Str("timezone", cfg.SalonTimezone).Msg("unknown salon timezone, using default")
	}
	loc := timezone.Location(cfg.SalonTimezone)

	db := dbpkg.NewDB(cfg, log)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	notifier := notify.NewDispatcher(db, notify.LogSender{Log: log}, log)
	notifier.Start(time.Minute)
	defer notifier.Stop()

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, cfg, loc, log)

	log.Info().Str("addr", cfg.Addr()).Msg("server running")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
