package bot

import "github.com/freeeve/luxbot/pkg/lux"

// CellValue scores a single cell's resource for the given player. Coal and
// uranium are worthless until researched.
func CellValue(c *lux.Cell, p *lux.Player, v CellValues) float64 {
	if c == nil || !c.HasResource() {
		return 0
	}
	switch c.Resource.Type {
	case lux.Coal:
		if !p.ResearchedCoal() {
			return 0
		}
		return v.Coal
	case lux.Uranium:
		if !p.ResearchedUranium() {
			return 0
		}
		return v.Uranium
	}
	return v.Wood
}

// ValueMap holds the region value of every cell for one turn.
type ValueMap struct {
	width  int
	height int
	values []float64
}

// BuildValueMap computes, for every cell, its own value plus the values of
// its in-bounds orthogonal neighbours.
func BuildValueMap(m *lux.GameMap, p *lux.Player, v CellValues) *ValueMap {
	own := make([]float64, m.Width*m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			own[y*m.Width+x] = CellValue(m.Cell(x, y), p, v)
		}
	}

	vm := &ValueMap{width: m.Width, height: m.Height, values: make([]float64, len(own))}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			sum := own[y*m.Width+x]
			for _, n := range m.Adjacent(lux.Position{X: x, Y: y}) {
				sum += own[n.Pos.Y*m.Width+n.Pos.X]
			}
			vm.values[y*m.Width+x] = sum
		}
	}
	return vm
}

// At returns the region value at pos, or 0 off the map.
func (vm *ValueMap) At(pos lux.Position) float64 {
	if pos.X < 0 || pos.Y < 0 || pos.X >= vm.width || pos.Y >= vm.height {
		return 0
	}
	return vm.values[pos.Y*vm.width+pos.X]
}

// Each visits every cell in row-major order (y outer, x inner).
func (vm *ValueMap) Each(fn func(pos lux.Position, value float64)) {
	for y := 0; y < vm.height; y++ {
		for x := 0; x < vm.width; x++ {
			fn(lux.Position{X: x, Y: y}, vm.values[y*vm.width+x])
		}
	}
}
