package lux

// City is a connected group of city tiles sharing one fuel pool.
type City struct {
	ID          string
	Team        int
	Fuel        float64
	LightUpkeep float64
	Tiles       []*CityTile
}

// CityTile is one cell of a city.
type CityTile struct {
	CityID   string
	Team     int
	Pos      Position
	Cooldown float64
}

// CanAct reports whether the tile may build or research this turn.
func (ct *CityTile) CanAct() bool { return ct.Cooldown < 1 }
