package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nkoval/mafia-arena/internal/achievements"
	appcfg "github.com/nkoval/mafia-arena/internal/config"
	"github.com/nkoval/mafia-arena/internal/httpapi"
	"github.com/nkoval/mafia-arena/internal/identity"
	"github.com/nkoval/mafia-arena/internal/obslog"
	"github.com/nkoval/mafia-arena/internal/rooms"
	"github.com/nkoval/mafia-arena/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("log init error: %v", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis ping error: %v", err)
	}

	var repo identity.Repository
	if cfg.DatabaseURL != "" {
		repo, err = identity.NewPostgresRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres init error: %v", err)
		}
	} else {
		obslog.L().Warn("no DATABASE_URL configured, using in-memory identity store")
		repo = identity.NewMemoryRepository()
	}

	users := identity.NewService(repo, cfg.TelegramBotToken, cfg.TelegramAuthMaxAge)
	store := rooms.NewStore(rdb, cfg.RoomTTL)
	registry := rooms.NewManager(store, users, cfg.DefaultMaxPlayers, cfg.HardMaxPlayers)
	engine := session.NewEngine(store, users, session.Durations{
		Night: cfg.NightDuration,
		Day:   cfg.DayDuration,
		Vote:  cfg.VoteDuration,
	})

	catalog, err := achievements.Load()
	if err != nil {
		log.Fatalf("achievements catalog error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sweeper := session.NewSweeper(store, engine, cfg.SweepInterval)
	go sweeper.Run(ctx)

	handler := httpapi.SetupRoutes(&httpapi.API{
		Users:        users,
		Rooms:        registry,
		Engine:       engine,
		Achievements: catalog,
	})
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		obslog.L().Info("server_listen", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obslog.L().Fatal("server_failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = rdb.Close()
	obslog.L().Info("server_stopped")
}
