package lux

// ResourceType identifies a harvestable resource.
type ResourceType string

const (
	Wood    ResourceType = "wood"
	Coal    ResourceType = "coal"
	Uranium ResourceType = "uranium"
)

// Resource is a resource deposit on a cell.
type Resource struct {
	Type   ResourceType
	Amount int
}

// Cell is one map square. A cell holds at most one of a resource or a city tile.
type Cell struct {
	Pos      Position
	Resource *Resource
	CityTile *CityTile
	Road     float64
}

// HasResource reports whether the cell carries a non-depleted resource.
func (c *Cell) HasResource() bool {
	return c.Resource != nil && c.Resource.Amount > 0
}

// IsEmpty reports whether the cell has neither a resource nor a city tile.
func (c *Cell) IsEmpty() bool {
	return !c.HasResource() && c.CityTile == nil
}

// GameMap is the rectangular game board.
type GameMap struct {
	Width  int
	Height int
	cells  []Cell
}

// NewGameMap allocates an empty width x height map.
func NewGameMap(width, height int) *GameMap {
	m := &GameMap{Width: width, Height: height, cells: make([]Cell, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.cells[y*width+x].Pos = Position{x, y}
		}
	}
	return m
}

// InBounds reports whether pos lies on the map.
func (m *GameMap) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < m.Width && pos.Y < m.Height
}

// Cell returns the cell at (x, y), or nil when out of bounds.
func (m *GameMap) Cell(x, y int) *Cell {
	if !m.InBounds(Position{x, y}) {
		return nil
	}
	return &m.cells[y*m.Width+x]
}

// CellAt returns the cell at pos, or nil when out of bounds.
func (m *GameMap) CellAt(pos Position) *Cell {
	return m.Cell(pos.X, pos.Y)
}

// Adjacent returns the in-bounds orthogonal neighbours of pos in
// west, east, north, south order. Edges have fewer neighbours.
func (m *GameMap) Adjacent(pos Position) []*Cell {
	adj := make([]*Cell, 0, 4)
	for _, p := range []Position{
		{pos.X - 1, pos.Y},
		{pos.X + 1, pos.Y},
		{pos.X, pos.Y - 1},
		{pos.X, pos.Y + 1},
	} {
		if c := m.CellAt(p); c != nil {
			adj = append(adj, c)
		}
	}
	return adj
}

// SetResource places a resource deposit on a cell.
func (m *GameMap) SetResource(pos Position, t ResourceType, amount int) {
	if c := m.CellAt(pos); c != nil {
		c.Resource = &Resource{Type: t, Amount: amount}
	}
}

// ResourceCells returns every cell with a resource in row-major order.
func (m *GameMap) ResourceCells() []*Cell {
	var out []*Cell
	for i := range m.cells {
		if m.cells[i].HasResource() {
			out = append(out, &m.cells[i])
		}
	}
	return out
}
