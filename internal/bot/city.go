package bot

import (
	"math"

	"github.com/freeeve/luxbot/pkg/lux"
)

// AllocateCityActions gives every city tile that can act either a worker
// build or a research action. Workers are built while the player has more
// tiles than units; with a WorkerRatio set and more than RatioMinUnits
// units, the target is ceil(ratio*tiles) instead.
func AllocateCityActions(p *lux.Player, unitCount int, rule CityRule) []lux.Action {
	tiles := p.CityTileCount()
	budget := tiles - unitCount
	if rule.WorkerRatio > 0 && unitCount > rule.RatioMinUnits {
		budget = int(math.Ceil(rule.WorkerRatio*float64(tiles))) - unitCount
	}

	var out []lux.Action
	for _, city := range p.Cities {
		for _, ct := range city.Tiles {
			if !ct.CanAct() {
				continue
			}
			if budget > 0 {
				out = append(out, lux.BuildWorker(ct.Pos))
				budget--
			} else {
				out = append(out, lux.Research(ct.Pos))
			}
		}
	}
	return out
}
