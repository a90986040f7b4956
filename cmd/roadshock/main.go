package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urbansim/roadshock/pkg/cache"
	"github.com/urbansim/roadshock/pkg/config"
	"github.com/urbansim/roadshock/pkg/experiment"
	"github.com/urbansim/roadshock/pkg/loader"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/scenario"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	city := flag.String("city", "", "City to simulate (must be in the configured list)")
	scenarioName := flag.String("scenario", "Random Failure", "Damage scenario name")
	severity := flag.Float64("severity", 0.1, "Severity fraction in [0,1]")
	severities := flag.String("severities", "", "Comma-separated severity list; runs a sweep when set")
	pairs := flag.Int("pairs", 0, "OD pair count (0 uses the configured default)")
	repeats := flag.Int("repeats", 0, "Repeats per severity in a sweep (0 uses the configured default)")
	seed := flag.Int64("seed", 42, "Base random seed")
	flag.Parse()

	if *city == "" {
		fmt.Fprintln(os.Stderr, "usage: roadshock -city <name> [-scenario <name>] [-severity <f> | -severities <f,f,...>]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if !cfg.SupportsCity(*city) {
		fatal(fmt.Errorf("unsupported city %q; supported: %s", *city, strings.Join(cfg.Cities, "; ")))
	}

	sc, err := scenario.Parse(*scenarioName)
	if err != nil {
		fatal(err)
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.WarnLevel)
	graphCache, err := cache.New(cfg.GraphCacheDir)
	if err != nil {
		fatal(err)
	}
	geocoder := loader.NewGeocoder(cfg.GeocodeURL, nil)
	graphs := loader.NewGraphProvider(graphCache, geocoder, cfg.OverpassURL, nil, logger, nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SimulationTimeout.Std())
	defer cancel()

	g, err := graphs.Load(ctx, *city)
	if err != nil {
		fatal(err)
	}

	pairCount := *pairs
	if pairCount <= 0 {
		pairCount = cfg.DefaultPairCount
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if *severities == "" {
		result, err := experiment.RunSingle(ctx, g, experiment.SingleConfig{
			City:         *city,
			Scenario:     sc,
			Severity:     *severity,
			PairCount:    pairCount,
			PenaltyRatio: cfg.PenaltyRatio,
			Seed:         *seed,
		})
		if err != nil {
			fatal(err)
		}
		fmt.Fprintln(w, "CITY\tSCENARIO\tSEVERITY\tAVG RATIO\tMEDIAN\tDISCONNECTED %\tREMOVED\tPAIRS")
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.3f\t%.3f\t%.1f\t%d\t%d\n",
			result.City, result.Scenario, result.Severity,
			result.AvgRatio, result.MedianRatio, result.PctDisconnected,
			result.NRemovedEdges, result.NPairs)
		return
	}

	levels, err := parseSeverities(*severities)
	if err != nil {
		fatal(err)
	}
	repeatCount := *repeats
	if repeatCount <= 0 {
		repeatCount = cfg.DefaultRepeats
	}

	table, err := experiment.RunSweep(ctx, g, experiment.SweepConfig{
		City:         *city,
		Scenario:     sc,
		Severities:   levels,
		PairCount:    pairCount,
		Repeats:      repeatCount,
		PenaltyRatio: cfg.PenaltyRatio,
		BaseSeed:     *seed,
	})
	if err != nil {
		fatal(err)
	}

	fmt.Fprintf(w, "run %s\n", table.RunID)
	fmt.Fprintln(w, "SEVERITY\tREPEAT\tAVG RATIO\tMEDIAN\tDISCONNECTED %\tREMOVED\tPAIRS")
	for _, row := range table.Rows {
		fmt.Fprintf(w, "%.2f\t%d\t%.3f\t%.3f\t%.1f\t%d\t%d\n",
			row.Severity, row.Repeat,
			row.AvgRatio, row.MedianRatio, row.PctDisconnected,
			row.NRemovedEdges, row.NPairs)
	}
}

func parseSeverities(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	levels := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad severity %q: %w", part, err)
		}
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("severity %v outside [0,1]", v)
		}
		levels = append(levels, v)
	}
	return levels, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "roadshock:", err)
	os.Exit(1)
}
