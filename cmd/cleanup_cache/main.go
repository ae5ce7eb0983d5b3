package main

import (
	"context"
	"flag"
	"log"
	"time"

	"foodfacts/internal/commons"
	"foodfacts/internal/infrastructure/logger"
	"foodfacts/internal/infrastructure/mysql"
	"foodfacts/internal/product/repository"

	"go.uber.org/zap"
)

func main() {
	olderThan := flag.Duration("older-than", 0, "evict entries fetched before now minus this duration (default: CACHE_TTL)")
	flag.Parse()

	cfg, err := commons.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	retention := *olderThan
	if retention <= 0 {
		retention = cfg.Cache.TTL
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := repository.NewMySQLRepository(db).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		zapLogger.Fatal("cache cleanup failed", zap.Error(err))
	}

	zapLogger.Info("cache cleanup completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted),
	)
}
