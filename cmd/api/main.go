package main

import (
	"net/http"

	"github.com/safar/go-order-fulfillment/internal/auth"
	"github.com/safar/go-order-fulfillment/internal/config"
	"github.com/safar/go-order-fulfillment/internal/database"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	app := &app{
		db:     db,
		cfg:    cfg,
		log:    logger,
		tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.requestLogger(app.routes()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
