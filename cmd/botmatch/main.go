package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/bench"
	"github.com/freeeve/luxbot/internal/bot"
	"github.com/freeeve/luxbot/internal/config"
	"github.com/freeeve/luxbot/internal/mapgen"
	"github.com/freeeve/luxbot/internal/repository/sqlite"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg := config.Load()

	var (
		variants   string
		numMaps    int
		turns      string
		workers    int
		seed       int64
		width      int
		height     int
		units      int
		cities     int
		policyFile string
		dbPath     string
		jsonOut    bool
	)

	flag.StringVar(&variants, "variants", strings.Join(bot.VariantNames(), ","), "Comma-separated policy variants")
	flag.IntVar(&numMaps, "n", 10, "Number of generated maps")
	flag.StringVar(&turns, "turns", "0,15,28,35", "Turns sampled on every map")
	flag.IntVar(&workers, "workers", 4, "Concurrency (parallel samples)")
	flag.Int64Var(&seed, "seed", 0, "Base map seed")
	flag.IntVar(&width, "width", 16, "Map width")
	flag.IntVar(&height, "height", 16, "Map height")
	flag.IntVar(&units, "units", 3, "Workers per team")
	flag.IntVar(&cities, "cities", 2, "Cities per team")
	flag.StringVar(&policyFile, "policy", cfg.PolicyFile, "Policy YAML file (or use POLICY_FILE env)")
	flag.StringVar(&dbPath, "db", cfg.BenchDB, "SQLite file to record the run (or use BENCH_DB env)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.Parse()

	policies := bot.Presets()
	if policyFile != "" {
		var err error
		if policies, err = bot.LoadPolicies(policyFile); err != nil {
			log.Fatal().Err(err).Str("file", policyFile).Msg("Failed to load policies")
		}
	}

	sampleTurns, err := parseTurns(turns)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -turns")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	runCfg := bench.Config{
		Variants: splitList(variants),
		Policies: policies,
		Maps:     numMaps,
		Turns:    sampleTurns,
		Seed:     seed,
		Map:      mapgen.GenConfig{Width: width, Height: height, Units: units, Cities: cities},
		Workers:  workers,
	}

	started := time.Now().UTC()
	stats, err := bench.Run(ctx, runCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Bench failed")
	}

	runID := uuid.NewString()
	if dbPath != "" {
		if err := record(ctx, dbPath, runID, runCfg, started, stats); err != nil {
			log.Error().Err(err).Str("db", dbPath).Msg("Failed to record run")
		} else {
			log.Info().Str("db", dbPath).Str("runId", runID).Msg("Run recorded")
		}
	}

	if jsonOut {
		printJSON(runID, runCfg, stats)
	} else {
		printSummary(runCfg, stats)
	}
}

func record(ctx context.Context, path, runID string, cfg bench.Config, started time.Time, stats []bench.Stats) error {
	store, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	results := make([]sqlite.VariantResult, len(stats))
	for i, s := range stats {
		results[i] = sqlite.VariantResult{
			Variant:    s.Variant,
			Turns:      s.Turns,
			Actions:    s.Actions,
			Moves:      s.Moves,
			Builds:     s.Builds,
			Workers:    s.Workers,
			Research:   s.Research,
			Passes:     s.Passes,
			Unresolved: s.Unresolved,
			MeanMs:     s.MeanMs,
		}
	}
	return store.SaveRun(ctx, sqlite.Run{
		ID:        runID,
		Seed:      cfg.Seed,
		Maps:      cfg.Maps,
		Width:     cfg.Map.Width,
		Height:    cfg.Map.Height,
		StartedAt: started,
	}, results)
}

func parseTurns(s string) ([]int, error) {
	var out []int
	for _, f := range splitList(s) {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad turn %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func printSummary(cfg bench.Config, stats []bench.Stats) {
	fmt.Printf("\nResults (%d maps %dx%d, turns %v):\n", cfg.Maps, cfg.Map.Width, cfg.Map.Height, cfg.Turns)
	for _, s := range stats {
		perTurn := func(n int) float64 { return float64(n) / float64(s.Turns) }
		fmt.Printf("  %-12s %4d turns  actions %5.1f  moves %5.1f  bcity %4.2f  bw %4.2f  r %4.2f  passes %4.2f  unresolved %4.2f  -- %.3f ms\n",
			s.Variant, s.Turns, perTurn(s.Actions), perTurn(s.Moves), perTurn(s.Builds),
			perTurn(s.Workers), perTurn(s.Research), perTurn(s.Passes), perTurn(s.Unresolved), s.MeanMs)
	}
}

func printJSON(runID string, cfg bench.Config, stats []bench.Stats) {
	out := struct {
		RunID   string        `json:"run_id"`
		Maps    int           `json:"maps"`
		Turns   []int         `json:"turns"`
		Results []bench.Stats `json:"results"`
	}{
		RunID:   runID,
		Maps:    cfg.Maps,
		Turns:   cfg.Turns,
		Results: stats,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
