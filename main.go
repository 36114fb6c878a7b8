package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"debate_room/internal/ai"
	"debate_room/internal/api"
	"debate_room/internal/cache"
	"debate_room/internal/models"
	"debate_room/internal/pubsub"
	"debate_room/internal/repository"
	"debate_room/internal/service"
	"debate_room/internal/storage"
	"debate_room/internal/utils"
	"debate_room/pkg/config"
	"debate_room/pkg/log"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.L().Fatal().Err(err).Msg("failed to load config")
	}
	log.Init(log.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger := log.L()

	utils.ConfigureJWT(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)

	// 初始化資料庫連接
	db, err := storage.NewDatabase(storage.Config{
		Driver:          cfg.DB.Driver,
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		Name:            cfg.DB.Name,
		SSLMode:         cfg.DB.SSLMode,
		FilePath:        cfg.DB.FilePath,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto migrate database")
	}

	repos := repository.NewRepositories(db)

	// Redis 為選用：關閉時快照不快取，事件只推給本機的連線
	var (
		roomCache cache.RoomCache = cache.NopRoomCache{}
		bus       pubsub.PubSub
	)
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisRoomCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize room cache")
		}
		defer redisCache.Close()
		roomCache = redisCache

		redisBus, err := pubsub.NewRedisPubSub(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize pubsub")
		}
		defer redisBus.Close()
		bus = redisBus
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := service.NewRoomHub(bus)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("room hub stopped")
		}
	}()

	aiClient := ai.NewClient(cfg.AI)
	services := service.NewServices(repos, service.Options{
		Cache:        roomCache,
		CacheTTL:     cfg.Cache.TTL,
		Notifier:     hub,
		Motions:      aiClient,
		Feedback:     aiClient,
		Transcriber:  aiClient,
		GraceSeconds: cfg.Speech.GraceSeconds,
		StaleAfter:   cfg.Speech.StaleAfter,
	})
	go services.Speech.RunSweeper(ctx, cfg.Speech.SweepInterval)

	// 設置 Gin 路由
	r := gin.New()
	r.Use(gin.Recovery(), log.GinMiddleware(*logger))
	api.SetupRoutes(r, services, hub)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
}
