package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/urbansim/roadshock/pkg/api"
	"github.com/urbansim/roadshock/pkg/cache"
	"github.com/urbansim/roadshock/pkg/config"
	"github.com/urbansim/roadshock/pkg/loader"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/metrics"
	"github.com/urbansim/roadshock/pkg/results"
	"github.com/urbansim/roadshock/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewDefaultLogger().Error("invalid configuration", logging.Error(err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	graphCache, err := cache.New(cfg.GraphCacheDir)
	if err != nil {
		logger.Error("failed to open graph cache", logging.Error(err))
		os.Exit(1)
	}
	hazardCache, err := cache.New(cfg.HazardCacheDir)
	if err != nil {
		logger.Error("failed to open hazard cache", logging.Error(err))
		os.Exit(1)
	}

	reg := metrics.DefaultRegistry()
	geocoder := loader.NewGeocoder(cfg.GeocodeURL, nil)
	graphs := loader.NewGraphProvider(graphCache, geocoder, cfg.OverpassURL, nil, logger, reg)
	hazards := loader.NewHazardProvider(hazardCache, geocoder, cfg.HazardAPIURL, cfg.HazardCollection, nil, logger, reg)

	var store *results.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = results.NewStore(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Error("failed to connect to results database", logging.Error(err))
			os.Exit(1)
		}
		defer store.Close()
	}

	apiServer := api.NewServer(cfg, graphs, hazards, store, logger, reg)

	gs := server.NewGracefulServer(cfg.Addr, apiServer.Handler(), logger)
	if err := gs.Start(); err != nil {
		logger.Error("server failed", logging.Error(err))
		os.Exit(1)
	}
}
