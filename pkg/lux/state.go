package lux

// Player is one team's view of its own units, cities and research.
type Player struct {
	Team           int
	ResearchPoints int
	Units          []*Unit
	Cities         []*City // in the order the observation listed them
}

// NewPlayer returns an empty player for the given team.
func NewPlayer(team int) *Player {
	return &Player{Team: team}
}

// ResearchedCoal reports whether coal can be mined.
func (p *Player) ResearchedCoal() bool {
	return p.ResearchPoints >= CoalResearchPoints
}

// ResearchedUranium reports whether uranium can be mined.
func (p *Player) ResearchedUranium() bool {
	return p.ResearchPoints >= UraniumResearchPoints
}

// City returns the city with the given ID, or nil.
func (p *Player) City(id string) *City {
	for _, c := range p.Cities {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CityTileCount returns the number of tiles across all cities.
func (p *Player) CityTileCount() int {
	n := 0
	for _, c := range p.Cities {
		n += len(c.Tiles)
	}
	return n
}

// CityTilePositions returns every city tile position in enumeration order.
func (p *Player) CityTilePositions() []Position {
	var out []Position
	for _, c := range p.Cities {
		for _, ct := range c.Tiles {
			out = append(out, ct.Pos)
		}
	}
	return out
}

// TotalFuel sums the fuel of every city.
func (p *Player) TotalFuel() float64 {
	var f float64
	for _, c := range p.Cities {
		f += c.Fuel
	}
	return f
}

// TotalUpkeep sums the nightly light upkeep of every city.
func (p *Player) TotalUpkeep() float64 {
	var u float64
	for _, c := range p.Cities {
		u += c.LightUpkeep
	}
	return u
}

// GameState is a read-only snapshot of one turn, seen by team ID.
type GameState struct {
	ID      int
	Turn    int
	Map     *GameMap
	Players [2]*Player
}

// NewGameState returns an empty state with an allocated map.
func NewGameState(id, width, height int) *GameState {
	return &GameState{
		ID:      id,
		Map:     NewGameMap(width, height),
		Players: [2]*Player{NewPlayer(0), NewPlayer(1)},
	}
}

// Me returns the player this bot controls.
func (gs *GameState) Me() *Player { return gs.Players[gs.ID] }

// Opponent returns the other player.
func (gs *GameState) Opponent() *Player { return gs.Players[(gs.ID+1)%2] }

// DayPhase returns the turn's index within the day/night cycle.
func (gs *GameState) DayPhase() int { return gs.Turn % CycleLength }

// IsNight reports whether the current turn falls in the night window.
func (gs *GameState) IsNight() bool { return gs.DayPhase() >= DayLength }
