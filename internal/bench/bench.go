// Package bench decides sample turns on generated maps and aggregates
// per-variant statistics.
package bench

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/bot"
	"github.com/freeeve/luxbot/internal/mapgen"
	"github.com/freeeve/luxbot/pkg/lux"
)

// Config configures one bench run.
type Config struct {
	Variants []string
	Policies map[string]bot.Policy // nil means the presets
	Maps     int
	Turns    []int // turns sampled on every map
	Seed     int64 // base seed; map i uses Seed+i
	Map      mapgen.GenConfig
	Workers  int
}

// DefaultTurns samples the opening, mid-day, dusk and night.
var DefaultTurns = []int{0, 15, 28, 35}

// Sample is one decided turn.
type Sample struct {
	Variant    string
	Map        int
	Turn       int
	Actions    map[string]int // by action kind
	Passes     int
	Unresolved int
	Elapsed    time.Duration
}

// Stats aggregates a variant's samples.
type Stats struct {
	Variant    string  `json:"variant"`
	Turns      int     `json:"turns"`
	Actions    int     `json:"actions"`
	Moves      int     `json:"moves"`
	Builds     int     `json:"builds"`
	Workers    int     `json:"workers"`
	Research   int     `json:"research"`
	Passes     int     `json:"passes"`
	Unresolved int     `json:"unresolved"`
	MeanMs     float64 `json:"mean_ms"`
}

type job struct {
	variant string
	mapIdx  int
	turn    int
}

// Run decides every (variant, map, turn) sample and returns stats sorted
// by variant name.
func Run(ctx context.Context, cfg Config) ([]Stats, error) {
	if len(cfg.Variants) == 0 {
		return nil, fmt.Errorf("no variants")
	}
	if cfg.Maps <= 0 {
		cfg.Maps = 1
	}
	if len(cfg.Turns) == 0 {
		cfg.Turns = DefaultTurns
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Policies == nil {
		cfg.Policies = bot.Presets()
	}
	for _, v := range cfg.Variants {
		if _, ok := cfg.Policies[v]; !ok {
			return nil, fmt.Errorf("unknown variant %q", v)
		}
	}

	var jobs []job
	for _, v := range cfg.Variants {
		for i := 0; i < cfg.Maps; i++ {
			for _, t := range cfg.Turns {
				jobs = append(jobs, job{v, i, t})
			}
		}
	}

	samples := make([]Sample, len(jobs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.Workers)

	for idx, j := range jobs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}
		if err := ctx.Err(); err != nil {
			<-sem
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			samples[idx] = decideSample(cfg, j)
		}()
	}
	wg.Wait()

	log.Info().Int("samples", len(samples)).Int("variants", len(cfg.Variants)).Msg("Bench complete")
	return Aggregate(samples), nil
}

// decideSample is swapped in tests to hold a worker.
var decideSample = decide

// decide plays one sample on a freshly generated map with a fresh agent.
func decide(cfg Config, j job) Sample {
	gs := SampleState(cfg, j.mapIdx, j.turn)
	agent := bot.NewAgent(cfg.Policies[j.variant])
	start := time.Now()
	res := agent.Decide(gs)
	elapsed := time.Since(start)

	s := Sample{
		Variant:    j.variant,
		Map:        j.mapIdx,
		Turn:       j.turn,
		Actions:    make(map[string]int),
		Passes:     res.Passes,
		Unresolved: res.Unresolved,
		Elapsed:    elapsed,
	}
	for _, a := range res.Actions {
		if !a.IsAnnotation() {
			s.Actions[a.Kind()]++
		}
	}
	return s
}

// Aggregate folds samples into per-variant stats sorted by variant.
func Aggregate(samples []Sample) []Stats {
	by := make(map[string]*Stats)
	elapsed := make(map[string]time.Duration)
	for _, s := range samples {
		st, ok := by[s.Variant]
		if !ok {
			st = &Stats{Variant: s.Variant}
			by[s.Variant] = st
		}
		st.Turns++
		for kind, n := range s.Actions {
			st.Actions += n
			switch kind {
			case "m":
				st.Moves += n
			case "bcity":
				st.Builds += n
			case "bw":
				st.Workers += n
			case "r":
				st.Research += n
			}
		}
		st.Passes += s.Passes
		st.Unresolved += s.Unresolved
		elapsed[s.Variant] += s.Elapsed
	}

	out := make([]Stats, 0, len(by))
	for v, st := range by {
		st.MeanMs = float64(elapsed[v].Microseconds()) / 1000 / float64(st.Turns)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variant < out[j].Variant })
	return out
}

// MapSeed reports the seed map i uses for a base seed. A zero base still
// yields fixed seeds so runs are repeatable.
func MapSeed(base int64, i int) int64 {
	if base == 0 {
		return int64(i) + 1
	}
	return base + int64(i)
}

// SampleState regenerates the state a sample was decided on.
func SampleState(cfg Config, mapIdx, turn int) *lux.GameState {
	gc := cfg.Map
	gc.Seed = MapSeed(cfg.Seed, mapIdx)
	gs := mapgen.Generate(gc)
	gs.Turn = turn
	return gs
}
