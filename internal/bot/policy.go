package bot

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/freeeve/luxbot/pkg/lux"
)

// Policy is the full set of tuning knobs for one bot variant. The three
// shipped variants differ only in these values; the decision code is shared.
type Policy struct {
	Name         string           `yaml:"name"`
	Values       CellValues       `yaml:"values"`
	Cadence      CadenceRule      `yaml:"cadence"`
	Gather       GatherRule       `yaml:"gather"`
	Power        PowerRule        `yaml:"power"`
	Build        BuildRule        `yaml:"build"`
	Opening      OpeningRule      `yaml:"opening"`
	Shelter      ShelterRule      `yaml:"shelter"`
	EnergyReturn EnergyReturnRule `yaml:"energy_return"`
	Explore      ExploreRule      `yaml:"explore"`
	Cities       CityRule         `yaml:"cities"`
	Annotate     bool             `yaml:"annotate"`
}

// CellValues are the per-cell worth of each resource once researched.
type CellValues struct {
	Wood    float64 `yaml:"wood"`
	Coal    float64 `yaml:"coal"`
	Uranium float64 `yaml:"uranium"`
}

// CadenceRule sends a subset of workers home with wood late in the day.
// Workers whose numeric ID is divisible by Modulus carry a wood threshold of
// Step*min(Cap, cycle-phase) once the phase passes LatePhase. Modulus 0
// disables the rule, 1 applies it to every worker.
type CadenceRule struct {
	Modulus   int `yaml:"modulus"`
	LatePhase int `yaml:"late_phase"`
	Step      int `yaml:"step"`
	Cap       int `yaml:"cap"`
}

// GatherRule controls when and where workers gather.
type GatherRule struct {
	MaxDistance int `yaml:"max_distance"`
	// Workers with free space always gather before DayPhaseEnd.
	DayPhaseEnd int `yaml:"day_phase_end"`
	// After DayPhaseEnd they gather only when their free space lies in
	// [NightMinSpace, NightMaxSpace]; a zero max is unbounded.
	NightMinSpace     int  `yaml:"night_min_space"`
	NightMaxSpace     int  `yaml:"night_max_space"`
	ResourceCellsOnly bool `yaml:"resource_cells_only"`
	// City tiles are excluded as gather sites while the unit count is at
	// most OpenCityUnitCount.
	OpenCityUnitCount     int  `yaml:"open_city_unit_count"`
	OpenCityWhenUnpowered bool `yaml:"open_city_when_unpowered"`
}

// PowerRule decides whether cities hold enough fuel to allow expansion.
type PowerRule struct {
	Tiers           []PowerTier `yaml:"tiers"`
	LargeCitiesOnly bool        `yaml:"large_cities_only"`
}

// PowerTier applies once the day phase exceeds AfterPhase: every checked
// city needs fuel >= ceil(upkeep*UpkeepMultiplier + Reserve).
type PowerTier struct {
	AfterPhase       int     `yaml:"after_phase"`
	UpkeepMultiplier float64 `yaml:"upkeep_multiplier"`
	Reserve          float64 `yaml:"reserve"`
}

// BuildRule tunes expansion site selection.
type BuildRule struct {
	TravelThreshold    int  `yaml:"travel_threshold"`
	PreferDiagonal     bool `yaml:"prefer_diagonal"`
	MaxBuildersPerTurn int  `yaml:"max_builders_per_turn"`
}

// OpeningRule handles the turns where the player owns no city tile.
type OpeningRule struct {
	Enabled bool `yaml:"enabled"`
}

// ShelterRule keeps workers idle on city tiles from Phase onward. Zero disables.
type ShelterRule struct {
	Phase int `yaml:"phase"`
}

// EnergyReturnRule sends loaded workers home when the cities run short.
type EnergyReturnRule struct {
	Enabled     bool    `yaml:"enabled"`
	MinEnergy   int     `yaml:"min_energy"`
	AfterPhase  int     `yaml:"after_phase"`
	UpkeepRatio float64 `yaml:"upkeep_ratio"`
}

// ExploreRule lets one worker found a new settlement far from existing cities.
type ExploreRule struct {
	Enabled      bool `yaml:"enabled"`
	UnitsPerCity int  `yaml:"units_per_city"`
}

// CityRule tunes the city tile build/research split.
type CityRule struct {
	WorkerRatio   float64 `yaml:"worker_ratio"`
	RatioMinUnits int     `yaml:"ratio_min_units"`
}

// Variant names of the shipped presets.
const (
	VariantFirst      = "first"
	VariantAggro      = "aggro"
	VariantDiscerning = "discerning"
)

// DefaultVariant is used when a requested variant is unknown.
const DefaultVariant = VariantAggro

var baselineValues = CellValues{Wood: 20, Coal: 50, Uranium: 80}

// Presets returns the three shipped policies keyed by variant name.
func Presets() map[string]Policy {
	return map[string]Policy{
		VariantFirst: {
			Name:    VariantFirst,
			Values:  baselineValues,
			Cadence: CadenceRule{Modulus: 1, LatePhase: 27, Step: 4, Cap: 10},
			Gather: GatherRule{
				MaxDistance:       15,
				DayPhaseEnd:       lux.CycleLength,
				ResourceCellsOnly: true,
			},
			Power: PowerRule{Tiers: []PowerTier{{AfterPhase: -1, UpkeepMultiplier: 1, Reserve: 180}}},
			Build: BuildRule{TravelThreshold: 5},
			Cities: CityRule{
				WorkerRatio:   0.67,
				RatioMinUnits: 3,
			},
		},
		VariantAggro: {
			Name:    VariantAggro,
			Values:  baselineValues,
			Cadence: CadenceRule{Modulus: 3, LatePhase: 27, Step: 4, Cap: 10},
			Gather: GatherRule{
				MaxDistance:       15,
				DayPhaseEnd:       lux.DayLength,
				NightMaxSpace:     60,
				OpenCityUnitCount: 2,
			},
			Power: PowerRule{
				Tiers:           []PowerTier{{AfterPhase: 15, UpkeepMultiplier: 1, Reserve: 180}},
				LargeCitiesOnly: true,
			},
			Build: BuildRule{TravelThreshold: 5},
		},
		VariantDiscerning: {
			Name:   VariantDiscerning,
			Values: baselineValues,
			Gather: GatherRule{
				MaxDistance:           15,
				DayPhaseEnd:           lux.DayLength,
				NightMinSpace:         40,
				OpenCityUnitCount:     2,
				OpenCityWhenUnpowered: true,
			},
			Power: PowerRule{Tiers: []PowerTier{
				{AfterPhase: 20, UpkeepMultiplier: 8, Reserve: 180},
				{AfterPhase: 10, UpkeepMultiplier: 3},
			}},
			Build:        BuildRule{TravelThreshold: 3, PreferDiagonal: true, MaxBuildersPerTurn: 4},
			Opening:      OpeningRule{Enabled: true},
			Shelter:      ShelterRule{Phase: lux.DayLength},
			EnergyReturn: EnergyReturnRule{Enabled: true, MinEnergy: 400, AfterPhase: 20, UpkeepRatio: 10},
			Explore:      ExploreRule{Enabled: true, UnitsPerCity: 4},
		},
	}
}

// VariantNames returns the preset names in sorted order.
func VariantNames() []string {
	var names []string
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// policyFile is the on-disk shape of a policy override file:
//
//	policies:
//	  - name: aggro-far
//	    base: aggro
//	    gather:
//	      max_distance: 20
type policyFile struct {
	Policies []yaml.Node `yaml:"policies"`
}

// LoadPolicies reads a YAML policy file and overlays each entry on its base
// preset (or on the preset of the same name). The returned map includes the
// untouched presets as well.
func LoadPolicies(path string) (map[string]Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicies(raw)
}

// ParsePolicies is LoadPolicies on an in-memory document.
func ParsePolicies(raw []byte) (map[string]Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("policy yaml: %w", err)
	}

	policies := Presets()
	for i := range f.Policies {
		node := &f.Policies[i]
		var head struct {
			Name string `yaml:"name"`
			Base string `yaml:"base"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("policy %d: %w", i, err)
		}
		if head.Name == "" {
			return nil, fmt.Errorf("policy %d: missing name", i)
		}
		base := head.Base
		if base == "" {
			base = head.Name
		}
		p, ok := policies[base]
		if !ok {
			return nil, fmt.Errorf("policy %q: unknown base %q", head.Name, base)
		}
		// Decoding over a copy keeps every field the entry leaves out.
		p.Power.Tiers = append([]PowerTier(nil), p.Power.Tiers...)
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("policy %q: %w", head.Name, err)
		}
		p.Name = head.Name
		if p.Gather.MaxDistance <= 0 {
			return nil, fmt.Errorf("policy %q: gather.max_distance must be positive", head.Name)
		}
		policies[head.Name] = p
	}
	return policies, nil
}
