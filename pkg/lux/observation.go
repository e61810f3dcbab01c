package lux

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol tokens of the Lux kit stdin/stdout exchange.
const (
	DoneToken   = "D_DONE"
	FinishToken = "D_FINISH"
)

const (
	tokResearch = "rp"
	tokResource = "r"
	tokUnit     = "u"
	tokCity     = "c"
	tokCityTile = "ct"
	tokRoad     = "ccd"
)

// DecodeUpdates builds the full turn state from one block of update lines.
// The kit resends every unit, city and resource each turn, so no previous
// state is needed. A trailing D_DONE and blank lines are ignored.
func DecodeUpdates(id, width, height, turn int, lines []string) (*GameState, error) {
	if id != 0 && id != 1 {
		return nil, fmt.Errorf("lux: invalid player id %d", id)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("lux: invalid map size %dx%d", width, height)
	}
	gs := NewGameState(id, width, height)
	gs.Turn = turn

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line == DoneToken {
			continue
		}
		if err := decodeLine(gs, strings.Fields(line)); err != nil {
			return nil, fmt.Errorf("lux: line %d %q: %w", i+1, line, err)
		}
	}
	return gs, nil
}

func decodeLine(gs *GameState, f []string) error {
	switch f[0] {
	case tokResearch:
		return decodeResearch(gs, f)
	case tokResource:
		return decodeResource(gs, f)
	case tokUnit:
		return decodeUnit(gs, f)
	case tokCity:
		return decodeCity(gs, f)
	case tokCityTile:
		return decodeCityTile(gs, f)
	case tokRoad:
		return decodeRoad(gs, f)
	}
	return fmt.Errorf("unknown token %q", f[0])
}

// fieldReader parses positional fields, remembering the first error.
type fieldReader struct {
	f   []string
	err error
}

func (r *fieldReader) int(i int) int {
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(r.f[i])
	if err != nil {
		r.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

func (r *fieldReader) float(i int) float64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(r.f[i], 64)
	if err != nil {
		r.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

func expectFields(f []string, n int) error {
	if len(f) != n {
		return fmt.Errorf("expected %d fields, got %d", n, len(f))
	}
	return nil
}

func player(gs *GameState, team int) (*Player, error) {
	if team != 0 && team != 1 {
		return nil, fmt.Errorf("invalid team %d", team)
	}
	return gs.Players[team], nil
}

func decodeResearch(gs *GameState, f []string) error {
	if err := expectFields(f, 3); err != nil {
		return err
	}
	r := &fieldReader{f: f}
	team, points := r.int(1), r.int(2)
	if r.err != nil {
		return r.err
	}
	p, err := player(gs, team)
	if err != nil {
		return err
	}
	p.ResearchPoints = points
	return nil
}

func decodeResource(gs *GameState, f []string) error {
	if err := expectFields(f, 5); err != nil {
		return err
	}
	t := ResourceType(f[1])
	if t != Wood && t != Coal && t != Uranium {
		return fmt.Errorf("unknown resource %q", f[1])
	}
	r := &fieldReader{f: f}
	pos := Position{r.int(2), r.int(3)}
	amount := r.int(4)
	if r.err != nil {
		return r.err
	}
	if !gs.Map.InBounds(pos) {
		return fmt.Errorf("resource off map at %s", pos)
	}
	gs.Map.SetResource(pos, t, amount)
	return nil
}

func decodeUnit(gs *GameState, f []string) error {
	if err := expectFields(f, 10); err != nil {
		return err
	}
	r := &fieldReader{f: f}
	u := &Unit{
		Type:     UnitType(r.int(1)),
		Team:     r.int(2),
		ID:       f[3],
		Pos:      Position{r.int(4), r.int(5)},
		Cooldown: r.float(6),
		Cargo:    Cargo{Wood: r.int(7), Coal: r.int(8), Uranium: r.int(9)},
	}
	if r.err != nil {
		return r.err
	}
	if u.Type != Worker && u.Type != Cart {
		return fmt.Errorf("unknown unit type %d", u.Type)
	}
	if !gs.Map.InBounds(u.Pos) {
		return fmt.Errorf("unit off map at %s", u.Pos)
	}
	p, err := player(gs, u.Team)
	if err != nil {
		return err
	}
	p.Units = append(p.Units, u)
	return nil
}

func decodeCity(gs *GameState, f []string) error {
	if err := expectFields(f, 5); err != nil {
		return err
	}
	r := &fieldReader{f: f}
	c := &City{Team: r.int(1), ID: f[2], Fuel: r.float(3), LightUpkeep: r.float(4)}
	if r.err != nil {
		return r.err
	}
	p, err := player(gs, c.Team)
	if err != nil {
		return err
	}
	p.Cities = append(p.Cities, c)
	return nil
}

func decodeCityTile(gs *GameState, f []string) error {
	if err := expectFields(f, 6); err != nil {
		return err
	}
	r := &fieldReader{f: f}
	ct := &CityTile{Team: r.int(1), CityID: f[2], Pos: Position{r.int(3), r.int(4)}, Cooldown: r.float(5)}
	if r.err != nil {
		return r.err
	}
	p, err := player(gs, ct.Team)
	if err != nil {
		return err
	}
	city := p.City(ct.CityID)
	if city == nil {
		return fmt.Errorf("city tile for unknown city %q", ct.CityID)
	}
	cell := gs.Map.CellAt(ct.Pos)
	if cell == nil {
		return fmt.Errorf("city tile off map at %s", ct.Pos)
	}
	city.Tiles = append(city.Tiles, ct)
	cell.CityTile = ct
	return nil
}

func decodeRoad(gs *GameState, f []string) error {
	if err := expectFields(f, 4); err != nil {
		return err
	}
	r := &fieldReader{f: f}
	pos := Position{r.int(1), r.int(2)}
	road := r.float(3)
	if r.err != nil {
		return r.err
	}
	cell := gs.Map.CellAt(pos)
	if cell == nil {
		return fmt.Errorf("road off map at %s", pos)
	}
	cell.Road = road
	return nil
}

// EncodeUpdates serializes a state back into update lines, without the
// trailing D_DONE. Output is deterministic: research for both teams,
// resources in row-major order, then per team units, cities and tiles in
// stored order, then roads.
func EncodeUpdates(gs *GameState) []string {
	var out []string
	for _, p := range gs.Players {
		out = append(out, fmt.Sprintf("%s %d %d", tokResearch, p.Team, p.ResearchPoints))
	}
	for _, c := range gs.Map.ResourceCells() {
		out = append(out, fmt.Sprintf("%s %s %d %d %d", tokResource, c.Resource.Type, c.Pos.X, c.Pos.Y, c.Resource.Amount))
	}
	for _, p := range gs.Players {
		for _, u := range p.Units {
			out = append(out, fmt.Sprintf("%s %d %d %s %d %d %s %d %d %d", tokUnit,
				u.Type, u.Team, u.ID, u.Pos.X, u.Pos.Y, formatFloat(u.Cooldown),
				u.Cargo.Wood, u.Cargo.Coal, u.Cargo.Uranium))
		}
		for _, c := range p.Cities {
			out = append(out, fmt.Sprintf("%s %d %s %s %s", tokCity, c.Team, c.ID, formatFloat(c.Fuel), formatFloat(c.LightUpkeep)))
		}
		for _, c := range p.Cities {
			for _, ct := range c.Tiles {
				out = append(out, fmt.Sprintf("%s %d %s %d %d %s", tokCityTile, ct.Team, ct.CityID, ct.Pos.X, ct.Pos.Y, formatFloat(ct.Cooldown)))
			}
		}
	}
	for y := 0; y < gs.Map.Height; y++ {
		for x := 0; x < gs.Map.Width; x++ {
			if c := gs.Map.Cell(x, y); c.Road > 0 {
				out = append(out, fmt.Sprintf("%s %d %d %s", tokRoad, x, y, formatFloat(c.Road)))
			}
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
