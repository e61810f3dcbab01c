package lux

import "fmt"

// Direction is a single-step move direction in Lux command syntax.
type Direction string

const (
	North  Direction = "n"
	South  Direction = "s"
	East   Direction = "e"
	West   Direction = "w"
	Center Direction = "c"
)

// AllDirections returns the four cardinal directions.
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// Position is a cell coordinate. Y grows southward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Equals reports whether both positions name the same cell.
func (p Position) Equals(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// DistanceTo returns the Manhattan distance to o.
func (p Position) DistanceTo(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Chebyshev returns the king-move distance to o.
func (p Position) Chebyshev(o Position) int {
	dx, dy := abs(p.X-o.X), abs(p.Y-o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Translate returns the position n steps away in direction d.
func (p Position) Translate(d Direction, n int) Position {
	switch d {
	case North:
		return Position{p.X, p.Y - n}
	case South:
		return Position{p.X, p.Y + n}
	case East:
		return Position{p.X + n, p.Y}
	case West:
		return Position{p.X - n, p.Y}
	}
	return p
}

// DirectionTo returns the cardinal direction whose single step brings p
// closest to target, or Center when p is already there.
func (p Position) DirectionTo(target Position) Direction {
	best := Center
	bestDist := p.DistanceTo(target)
	for _, d := range AllDirections() {
		dist := p.Translate(d, 1).DistanceTo(target)
		if dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
