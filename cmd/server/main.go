package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avezov/cafe-booking/internal/config"
	"github.com/avezov/cafe-booking/internal/database"
	"github.com/avezov/cafe-booking/internal/handler"
	"github.com/avezov/cafe-booking/internal/metrics"
	appmw "github.com/avezov/cafe-booking/internal/middleware"
	"github.com/avezov/cafe-booking/internal/queue"
	"github.com/avezov/cafe-booking/internal/repository"
	"github.com/avezov/cafe-booking/internal/router"
	"github.com/avezov/cafe-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	if cfg.Env == "dev" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("schema migration failed")
	}
	cancel()

	metrics.Register()

	// Redis is optional: when unreachable, caching and rate limiting
	// are disabled and the API still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, cache and rate limiting disabled")
	}

	cafes := repository.NewCafeRepo(db)
	tables := repository.NewTableRepo(db)
	slots := repository.NewSlotRepo(db)
	dishes := repository.NewDishRepo(db)
	units := repository.NewUnitRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	notifier := service.NewAMQPNotifier(cfg.RabbitURL)
	go func() {
		if err := queue.StartBookingConsumer(cfg.RabbitURL); err != nil {
			log.Error().Err(err).Msg("booking consumer stopped")
		}
	}()

	bookingSvc := service.NewBookingService(cafes, tables, slots, units, bookings, notifier)
	availSvc := service.NewAvailabilityService(cafes, tables, slots, units)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(appmw.RequestLogger(log.Logger))
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	router.RegisterHealth(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewPublicHandler(cafes, tables, slots, dishes, availSvc),
		appmw.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc), cfg.JWTSecret)
	router.RegisterManager(e,
		handler.NewManagerHandler(cafes, tables, slots, dishes, users),
		handler.NewExportHandler(cafes, bookings),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
