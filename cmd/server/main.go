package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cargarn1/MovieFan/internal/config"
	"github.com/cargarn1/MovieFan/internal/database"
	"github.com/cargarn1/MovieFan/internal/handler"
	"github.com/cargarn1/MovieFan/internal/logging"
	"github.com/cargarn1/MovieFan/internal/middleware"
	"github.com/cargarn1/MovieFan/internal/queue"
	"github.com/cargarn1/MovieFan/internal/repository"
	"github.com/cargarn1/MovieFan/internal/router"
	"github.com/cargarn1/MovieFan/internal/service"
)

// stores groups the data access implementations selected by STORE_DRIVER.
type stores struct {
	membership repository.MembershipStore
	users      handler.UserStore
	movies     service.MovieCatalog
	prefs      service.PreferencesStore
	health     handler.Pinger
	closeFn    func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logging.Warn().Msg("using in-memory store; data is lost on restart")
		return stores{
			membership: repository.NewMemoryStore(),
			users:      repository.NewMemoryUsers(),
			movies:     repository.NewMemoryMovies(demoCatalog()...),
			prefs:      repository.NewMemoryPreferences(),
			closeFn:    func() {},
		}, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return stores{}, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	return stores{
		membership: repository.NewRoomRepo(db),
		users:      repository.NewUserRepo(db),
		movies:     repository.NewMovieRepo(db),
		prefs:      repository.NewPreferencesRepo(db),
		health:     db,
		closeFn:    func() { _ = db.Close() },
	}, nil
}

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store init failed")
	}
	defer st.closeFn()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		pub := queue.NewPublisher(cfg.RabbitURL, 256)
		go pub.Run(ctx)
		defer pub.Close()
		events = pub

		consumer := queue.NewConsumer(cfg.RabbitURL, "logs")
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("room event consumer stopped")
			}
		}()
	} else {
		logging.Info().Msg("RABBITMQ_URL not set, room events are not published")
	}

	roomSvc := service.NewRoomService(st.membership, st.users, st.movies, events)
	invSvc := service.NewInvitationService(st.membership, st.users, roomSvc, events)
	recCache := service.NewRedisRecommendationCache(rdb, "moviefan:recs", cfg.RecommendationTTL)
	recSvc := service.NewRecommendationService(st.movies, st.prefs, st.membership, recCache)
	prefSvc := service.NewPreferenceService(st.prefs, recSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := logging.Info()
			if v.Error != nil {
				ev = logging.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, &handler.HealthHandler{DB: st.health, Redis: rdb})
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, st.users), cfg.JWTSecret, rl)
	router.RegisterRooms(e, handler.NewRoomHandler(roomSvc, invSvc), cfg.JWTSecret, rl)
	router.RegisterRecommendations(e, handler.NewRecommendationHandler(recSvc, prefSvc), cfg.JWTSecret, rl, cache)

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown failed")
	}
}
