package main

import (
	"context"
	"flag"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/ingest"
	"github.com/openvehiclelab/evedb/pkg/logger"
	"github.com/openvehiclelab/evedb/pkg/match"
	"github.com/openvehiclelab/evedb/pkg/match/valhalla"
	"github.com/openvehiclelab/evedb/pkg/storage"
	"github.com/openvehiclelab/evedb/pkg/traject"
	"github.com/openvehiclelab/evedb/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	skipMatch = flag.Bool("skip_match", false, "stop after trajectory aggregation, do not call the map matcher")
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

	ctx := context.Background()
	batchSize := viper.GetInt("BATCH_SIZE")

	vehicles := ingest.NewVehicleLoader(db, logger)
	if err := vehicles.Run(ctx, viper.GetStringSlice("VEHICLE_SHEETS")); err != nil {
		logger.Fatal("vehicle load failed", zap.Error(err))
	}

	signals := ingest.NewSignalIngestor(db, logger, batchSize)
	if err := signals.Run(ctx, viper.GetString("SIGNAL_ARCHIVE")); err != nil {
		logger.Fatal("signal ingestion failed", zap.Error(err))
	}

	aggregator, err := traject.NewAggregator(db, logger, batchSize)
	if err != nil {
		logger.Fatal("trajectory aggregator setup failed", zap.Error(err))
	}
	if err := aggregator.Run(ctx); err != nil {
		logger.Fatal("trajectory aggregation failed", zap.Error(err))
	}

	if *skipMatch {
		logger.Info("map matching skipped by flag")
		return
	}

	oracle := valhalla.NewHTTPMatcher(
		viper.GetString("VALHALLA_URL"),
		viper.GetDuration("VALHALLA_TIMEOUT"),
		viper.GetFloat64("VALHALLA_RATE_LIMIT"),
	)
	matcher := match.NewMatcher(db, oracle, logger, batchSize)
	if err := matcher.Run(ctx); err != nil {
		logger.Fatal("map matching failed", zap.Error(err))
	}

	logger.Info("database build complete", zap.String("path", viper.GetString("DB_PATH")))
}
