package main

import (
	"fmt"
	"log"

	"aeroops/internal/config"
	"aeroops/internal/database"
	"aeroops/internal/logger"
	"aeroops/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	database.Init(cfg.DBDSN, zlog)

	r, err := server.NewRouter(cfg, zlog)
	if err != nil {
		zlog.Fatal("router init failed", zap.Error(err))
	}

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	zlog.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
