package bot

import "github.com/freeeve/luxbot/pkg/lux"

// Occupancy tracks the cell each friendly unit has committed to this turn.
// Every seeded unit has exactly one entry, moved in place on commit.
type Occupancy struct {
	pos map[string]lux.Position
}

// NewOccupancy returns an empty tracker.
func NewOccupancy() *Occupancy {
	return &Occupancy{pos: make(map[string]lux.Position)}
}

// Seed records the start position of every unit.
func (o *Occupancy) Seed(units []*lux.Unit) {
	for _, u := range units {
		o.pos[u.ID] = u.Pos
	}
}

// Commit moves a unit's entry to pos.
func (o *Occupancy) Commit(unitID string, pos lux.Position) {
	o.pos[unitID] = pos
}

// Position returns the committed cell of a unit.
func (o *Occupancy) Position(unitID string) (lux.Position, bool) {
	p, ok := o.pos[unitID]
	return p, ok
}

// Len returns the number of tracked units.
func (o *Occupancy) Len() int { return len(o.pos) }

// OccupiedExcludingCityTiles returns every committed cell that is not a city
// tile; any number of units may share a city tile.
func (o *Occupancy) OccupiedExcludingCityTiles(m *lux.GameMap) map[lux.Position]bool {
	out := make(map[lux.Position]bool, len(o.pos))
	for _, p := range o.pos {
		if c := m.CellAt(p); c != nil && c.CityTile != nil {
			continue
		}
		out[p] = true
	}
	return out
}
