package bot

import "github.com/freeeve/luxbot/pkg/lux"

func newState(width, height, turn int) *lux.GameState {
	gs := lux.NewGameState(0, width, height)
	gs.Turn = turn
	return gs
}

func addWorker(gs *lux.GameState, team int, id string, x, y, wood int) *lux.Unit {
	u := &lux.Unit{
		ID:    id,
		Type:  lux.Worker,
		Team:  team,
		Pos:   lux.Position{X: x, Y: y},
		Cargo: lux.Cargo{Wood: wood},
	}
	p := gs.Players[team]
	p.Units = append(p.Units, u)
	return u
}

func addCity(gs *lux.GameState, team int, id string, fuel, upkeep float64, tiles ...lux.Position) *lux.City {
	c := &lux.City{ID: id, Team: team, Fuel: fuel, LightUpkeep: upkeep}
	for _, pos := range tiles {
		ct := &lux.CityTile{CityID: id, Team: team, Pos: pos}
		c.Tiles = append(c.Tiles, ct)
		gs.Map.CellAt(pos).CityTile = ct
	}
	p := gs.Players[team]
	p.Cities = append(p.Cities, c)
	return c
}

func wood(gs *lux.GameState, ps ...lux.Position) {
	for _, p := range ps {
		gs.Map.SetResource(p, lux.Wood, 500)
	}
}

func pos(x, y int) lux.Position { return lux.Position{X: x, Y: y} }

// selectorFor builds a selector over gs with a fresh turn state.
func selectorFor(gs *lux.GameState, p Policy) (*Selector, *TurnState) {
	ts := NewTurnState(gs.Me().Units)
	values := BuildValueMap(gs.Map, gs.Me(), p.Values)
	return NewSelector(gs, p, ts, values, ""), ts
}
