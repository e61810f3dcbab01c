// Package mapgen builds synthetic, mirror-symmetric game states for the
// bench harness.
package mapgen

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/freeeve/luxbot/pkg/lux"
)

// GenConfig controls map generation.
type GenConfig struct {
	Width  int
	Height int
	Seed   int64 // 0 picks a random seed
	Units  int   // workers per team
	Cities int   // single-tile cities per team
}

// DefaultConfig returns a small map comparable to the smallest kit size.
func DefaultConfig() GenConfig {
	return GenConfig{Width: 16, Height: 16, Units: 3, Cities: 2}
}

const (
	resourceThreshold = 0.62
	coalThreshold     = 0.6
	uraniumThreshold  = 0.75
	noiseFrequency    = 0.18
	cityUpkeep        = 23
)

// Generate creates a state mirrored across the vertical axis: team 1 owns
// the reflection of every team 0 unit and city. The state is seen by team 0
// at turn 0.
func Generate(cfg GenConfig) *lux.GameState {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))
	density := opensimplex.NewNormalized(seed)
	richness := opensimplex.NewNormalized(seed + 1)

	gs := lux.NewGameState(0, cfg.Width, cfg.Height)
	half := (cfg.Width + 1) / 2

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < half; x++ {
			v := octaveNoise(density, float64(x), float64(y), 3, noiseFrequency, 0.5)
			if v < resourceThreshold {
				continue
			}
			r := richness.Eval2(float64(x)*noiseFrequency, float64(y)*noiseFrequency)
			t, amount := lux.Wood, 300+rng.Intn(201)
			switch {
			case r > uraniumThreshold:
				t, amount = lux.Uranium, 300+rng.Intn(31)
			case r > coalThreshold:
				t, amount = lux.Coal, 350+rng.Intn(76)
			}
			p := lux.Position{X: x, Y: y}
			gs.Map.SetResource(p, t, amount)
			gs.Map.SetResource(mirror(p, cfg.Width), t, amount)
		}
	}

	// Team 0 lives strictly left of the axis so reflections never collide.
	var free []lux.Position
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width/2; x++ {
			if gs.Map.Cell(x, y).IsEmpty() {
				free = append(free, lux.Position{X: x, Y: y})
			}
		}
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	me, opp := gs.Players[0], gs.Players[1]
	for i := 0; i < cfg.Cities && len(free) > 0; i++ {
		p := free[0]
		free = free[1:]
		fuel := float64(rng.Intn(301))
		addCity(gs, me, fmt.Sprintf("c_%d", 2*i+1), fuel, p)
		addCity(gs, opp, fmt.Sprintf("c_%d", 2*i+2), fuel, mirror(p, cfg.Width))
	}
	for i := 0; i < cfg.Units && len(free) > 0; i++ {
		p := free[0]
		free = free[1:]
		cargo := randomCargo(rng)
		me.Units = append(me.Units, &lux.Unit{
			ID: fmt.Sprintf("u_%d", i+1), Type: lux.Worker, Team: 0, Pos: p, Cargo: cargo,
		})
		opp.Units = append(opp.Units, &lux.Unit{
			ID: fmt.Sprintf("u_%d", cfg.Units+i+1), Type: lux.Worker, Team: 1, Pos: mirror(p, cfg.Width), Cargo: cargo,
		})
	}
	return gs
}

func addCity(gs *lux.GameState, p *lux.Player, id string, fuel float64, pos lux.Position) {
	ct := &lux.CityTile{CityID: id, Team: p.Team, Pos: pos}
	p.Cities = append(p.Cities, &lux.City{
		ID: id, Team: p.Team, Fuel: fuel, LightUpkeep: cityUpkeep, Tiles: []*lux.CityTile{ct},
	})
	gs.Map.CellAt(pos).CityTile = ct
}

// randomCargo favours wood; a third of workers carry nothing.
func randomCargo(rng *rand.Rand) lux.Cargo {
	switch rng.Intn(3) {
	case 0:
		return lux.Cargo{}
	case 1:
		return lux.Cargo{Wood: rng.Intn(lux.WorkerCapacity + 1)}
	default:
		w := rng.Intn(lux.WorkerCapacity/2 + 1)
		return lux.Cargo{Wood: w, Coal: rng.Intn(lux.WorkerCapacity - w + 1)}
	}
}

func mirror(p lux.Position, width int) lux.Position {
	return lux.Position{X: width - 1 - p.X, Y: p.Y}
}

// octaveNoise layers several frequencies of noise into a value in [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
