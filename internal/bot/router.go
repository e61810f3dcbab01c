package bot

import "github.com/freeeve/luxbot/pkg/lux"

// Router proposes single greedy steps toward a target, avoiding occupied
// cells and city tiles that may not be entered.
type Router struct {
	m         *lux.GameMap
	occupancy *Occupancy
	opponent  map[lux.Position]bool
	ownCities map[lux.Position]bool
}

// NewRouter builds a router over one turn's map and city layout.
func NewRouter(m *lux.GameMap, occ *Occupancy, me, opp *lux.Player) *Router {
	return &Router{
		m:         m,
		occupancy: occ,
		opponent:  positionSet(opp.CityTilePositions()),
		ownCities: positionSet(me.CityTilePositions()),
	}
}

func positionSet(ps []lux.Position) map[lux.Position]bool {
	out := make(map[lux.Position]bool, len(ps))
	for _, p := range ps {
		out[p] = true
	}
	return out
}

// Step returns a move one cell closer to target, trying the vertical axis
// before the horizontal one and only the distance-reducing step on each.
// A unit bound for a build site passes allowCityTile=false so it does not
// walk through its own cities. On success the unit's occupancy is
// committed to the new cell.
func (r *Router) Step(u *lux.Unit, target lux.Position, allowCityTile bool) (lux.Action, bool) {
	if u.Pos.Equals(target) {
		return "", false
	}

	occupied := r.occupancy.OccupiedExcludingCityTiles(r.m)
	blocked := func(p lux.Position) bool {
		if !r.m.InBounds(p) || occupied[p] || r.opponent[p] {
			return true
		}
		return !allowCityTile && r.ownCities[p]
	}

	var candidates []lux.Direction
	switch {
	case u.Pos.Y > target.Y:
		candidates = append(candidates, lux.North)
	case u.Pos.Y < target.Y:
		candidates = append(candidates, lux.South)
	}
	switch {
	case u.Pos.X > target.X:
		candidates = append(candidates, lux.West)
	case u.Pos.X < target.X:
		candidates = append(candidates, lux.East)
	}

	for _, d := range candidates {
		next := u.Pos.Translate(d, 1)
		if blocked(next) {
			continue
		}
		r.occupancy.Commit(u.ID, next)
		return lux.Move(u.ID, d), true
	}
	return "", false
}
