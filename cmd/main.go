package main

import (
	"context"
	"os"

	"threadmerge/config"
	"threadmerge/internal/api"
	"threadmerge/internal/events"
	"threadmerge/internal/i18n"
	"threadmerge/internal/logger"
	"threadmerge/internal/routes"
	"threadmerge/internal/service"
	"threadmerge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()
	dbPool, err := config.New(ctx, cfg.DSN)
	if err != nil {
		logger.Log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := storage.Migrate(ctx, dbPool); err != nil {
		logger.Log.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	catalog, err := i18n.Load(cfg.MergeLocale)
	if err != nil {
		logger.Log.Error("failed to load messages", "locale", cfg.MergeLocale, "error", err)
		os.Exit(1)
	}

	userStorage := storage.NewPostgresUserStorage(dbPool)
	userService := service.NewUserService(userStorage)
	userHandler := api.NewUserHandler(userService)

	threadStorage := storage.NewPostgresThreadStorage(dbPool)
	threadService := service.NewThreadService(userStorage, threadStorage)
	threadHandler := api.NewThreadHandler(threadService)

	postStorage := storage.NewPostgresPostStorage(dbPool)
	postService := service.NewPostService(postStorage)
	postHandler := api.NewPostHandler(postService)

	dispatcher := events.NewDispatcher(
		events.LogListener{Log: logger.Log},
		events.MetricsListener{},
		events.StoreListener{Storage: storage.NewPostgresMergeEventStorage(dbPool)},
	)
	mergeService := service.NewMergeService(
		storage.NewPostgresMergeStorage(dbPool),
		service.ModeratorPolicy{AllowAuthors: cfg.MergeAuthorsCanMerge},
		catalog,
		dispatcher,
		logger.Log,
	)
	mergeHandler := api.NewMergeHandler(mergeService, userService, catalog)

	router := routes.InitRoutes(cfg.CORSOrigins, userHandler, threadHandler, postHandler, mergeHandler)

	address, err := cfg.ServerAddress()
	if err != nil {
		logger.Log.Error("failed to resolve server address", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("starting HTTP server", "address", address, "locale", catalog.Locale())
	if err := router.Run(address); err != nil {
		logger.Log.Error("HTTP server stopped", "error", err)
		os.Exit(1)
	}
}
