package main

import (
	"context"
	"flag"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/http"
	"github.com/openvehiclelab/evedb/pkg/http/usecases"
	"github.com/openvehiclelab/evedb/pkg/logger"
	"github.com/openvehiclelab/evedb/pkg/storage"
	"github.com/openvehiclelab/evedb/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	useRateLimit = flag.Bool("use_rate_limit", false, "rate limit API requests")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	if err := util.ReadConfig(); err != nil {
		logger.Fatal("read config", zap.Error(err))
	}

	store, err := storage.Open(viper.GetString("DB_PATH"), viper.GetInt("POOL_SIZE"))
	if err != nil {
		logger.Fatal("open database", zap.String("path", viper.GetString("DB_PATH")), zap.Error(err))
	}
	defer store.Close()
	db := eveddb.New(store)

	api := http.NewServer(logger)
	tripService := usecases.NewTripService(logger, db)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx, logger, *useRateLimit, tripService)

	signal := http.GracefulShutdown()

	logger.Info("eVED API Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
