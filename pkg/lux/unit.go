package lux

import (
	"strconv"
	"strings"
)

// UnitType distinguishes workers from carts.
type UnitType int

const (
	Worker UnitType = iota
	Cart
)

func (t UnitType) String() string {
	if t == Worker {
		return "worker"
	}
	return "cart"
}

// Cargo is the resource load carried by a unit.
type Cargo struct {
	Wood    int
	Coal    int
	Uranium int
}

// Total returns the number of resource units carried.
func (c Cargo) Total() int {
	return c.Wood + c.Coal + c.Uranium
}

// Unit is a mobile agent owned by a team.
type Unit struct {
	ID       string
	Type     UnitType
	Team     int
	Pos      Position
	Cooldown float64
	Cargo    Cargo
}

// IsWorker reports whether the unit is a worker.
func (u *Unit) IsWorker() bool { return u.Type == Worker }

// CanAct reports whether the unit is off cooldown this turn.
func (u *Unit) CanAct() bool { return u.Cooldown < 1 }

// Capacity returns the unit's cargo capacity.
func (u *Unit) Capacity() int {
	if u.Type == Worker {
		return WorkerCapacity
	}
	return CartCapacity
}

// CargoSpaceLeft returns the free cargo capacity.
func (u *Unit) CargoSpaceLeft() int {
	return u.Capacity() - u.Cargo.Total()
}

// Energy returns the fuel value of the carried cargo.
func (u *Unit) Energy() int {
	return u.Cargo.Wood*WoodFuelRate + u.Cargo.Coal*CoalFuelRate + u.Cargo.Uranium*UraniumFuelRate
}

// CanBuild reports whether the unit could found a city tile where it stands.
func (u *Unit) CanBuild(m *GameMap) bool {
	c := m.CellAt(u.Pos)
	return c != nil && c.IsEmpty() && u.CanAct() && u.Cargo.Total() >= CityBuildCost
}

// NumericID returns the integer suffix of IDs like "u_12", or -1.
func (u *Unit) NumericID() int {
	i := strings.LastIndexByte(u.ID, '_')
	n, err := strconv.Atoi(u.ID[i+1:])
	if err != nil {
		return -1
	}
	return n
}
