package bot

import (
	"math"

	"github.com/freeeve/luxbot/pkg/lux"
)

// DecisionKind classifies the selector's verdict for one unit.
type DecisionKind int

const (
	// DecisionNone means the unit has nothing to do this turn.
	DecisionNone DecisionKind = iota
	// DecisionTarget means the unit should be routed toward Target.
	DecisionTarget
	// DecisionAction means the unit acts immediately and is not routed.
	DecisionAction
)

// Decision is the selector's output for one unit.
type Decision struct {
	Kind     DecisionKind
	Target   lux.Position
	Action   lux.Action
	Building bool
	Reason   string
}

func none(reason string) Decision {
	return Decision{Kind: DecisionNone, Reason: reason}
}

func target(pos lux.Position, reason string) Decision {
	return Decision{Kind: DecisionTarget, Target: pos, Reason: reason}
}

func act(a lux.Action, reason string) Decision {
	return Decision{Kind: DecisionAction, Action: a, Reason: reason}
}

// Selector chooses a target or an immediate action for each worker.
// Targets it hands out are visible to later calls through the turn's
// Assigner only once the caller reserves them.
type Selector struct {
	gs      *lux.GameState
	me      *lux.Player
	policy  Policy
	state   *TurnState
	values  *ValueMap
	phase   int
	powered bool

	builders  int
	explorer  string
	exploring bool
}

// NewSelector prepares the per-turn inputs shared by every unit's choice.
// explorer is the unit remembered as explorer from earlier turns, if any.
func NewSelector(gs *lux.GameState, policy Policy, ts *TurnState, values *ValueMap, explorer string) *Selector {
	me := gs.Me()
	return &Selector{
		gs:       gs,
		me:       me,
		policy:   policy,
		state:    ts,
		values:   values,
		phase:    gs.DayPhase(),
		powered:  CitiesPowered(me, gs.DayPhase(), policy.Power),
		explorer: explorer,
	}
}

// Explorer returns the explorer unit after the choices made so far.
func (s *Selector) Explorer() string { return s.explorer }

// Builders returns how many units entered the build branch this turn.
func (s *Selector) Builders() int { return s.builders }

// Choose runs the decision precedence for one unit. The first matching
// branch wins.
func (s *Selector) Choose(u *lux.Unit) Decision {
	if !u.IsWorker() {
		return none("cart")
	}
	p := s.policy
	cell := s.gs.Map.CellAt(u.Pos)
	tiles := s.me.CityTileCount()

	if p.Opening.Enabled && tiles == 0 {
		if u.CargoSpaceLeft() == 0 {
			s.builders++
			return s.building(s.buildSite(u))
		}
		return s.gatherSite(u, true)
	}
	if p.Shelter.Phase > 0 && s.phase >= p.Shelter.Phase && cell.CityTile != nil {
		return none("shelter")
	}
	if u.Cargo.Wood < s.cadenceThreshold(u) {
		return s.home(u, "cadence")
	}
	if !u.CanAct() {
		return none("cooldown")
	}
	if s.shouldReturnEnergy(u) {
		return s.home(u, "energy")
	}

	space := u.CargoSpaceLeft()
	if space > 0 && s.mayGather(space) {
		return s.gatherSite(u, s.restrictive())
	}
	if space == 0 && (s.powered || tiles == 0) && s.builderSlot() {
		s.builders++
		if s.shouldExplore(u) {
			s.exploring = true
			s.explorer = u.ID
			if d, ok := s.exploreSite(u); ok {
				return s.building(d)
			}
		}
		return s.building(s.buildSite(u))
	}
	return s.home(u, "fallback")
}

func (s *Selector) building(d Decision) Decision {
	d.Building = true
	return d
}

// cadenceThreshold is the wood a unit must carry to keep working late in
// the day; below it the unit heads home.
func (s *Selector) cadenceThreshold(u *lux.Unit) int {
	c := s.policy.Cadence
	if c.Modulus <= 0 || s.phase <= c.LatePhase {
		return 0
	}
	id := u.NumericID()
	if id < 0 || id%c.Modulus != 0 {
		return 0
	}
	return c.Step * min(c.Cap, lux.CycleLength-s.phase)
}

func (s *Selector) shouldReturnEnergy(u *lux.Unit) bool {
	r := s.policy.EnergyReturn
	if !r.Enabled {
		return false
	}
	return u.Energy() > r.MinEnergy && s.phase > r.AfterPhase &&
		s.me.TotalUpkeep()*r.UpkeepRatio > s.me.TotalFuel()
}

func (s *Selector) mayGather(space int) bool {
	g := s.policy.Gather
	if s.phase < g.DayPhaseEnd {
		return true
	}
	return space >= g.NightMinSpace && (g.NightMaxSpace == 0 || space <= g.NightMaxSpace)
}

// restrictive reports whether gather sites on city tiles are excluded.
func (s *Selector) restrictive() bool {
	g := s.policy.Gather
	if len(s.me.Units) > g.OpenCityUnitCount {
		return false
	}
	return !(g.OpenCityWhenUnpowered && !s.powered)
}

func (s *Selector) builderSlot() bool {
	max := s.policy.Build.MaxBuildersPerTurn
	return max == 0 || s.builders < max
}

func (s *Selector) shouldExplore(u *lux.Unit) bool {
	e := s.policy.Explore
	if !e.Enabled || s.exploring || e.UnitsPerCity <= 0 {
		return false
	}
	if s.explorer != "" && s.explorer != u.ID {
		return false
	}
	cities := len(s.me.Cities)
	if cities == 0 {
		return false
	}
	return cities < len(s.me.Units)/(e.UnitsPerCity*cities)
}

// home targets the nearest friendly city tile.
func (s *Selector) home(u *lux.Unit, reason string) Decision {
	if c := s.gs.Map.CellAt(u.Pos); c != nil && c.CityTile != nil {
		return none("home")
	}
	best := -1
	var bestPos lux.Position
	for _, city := range s.me.Cities {
		for _, ct := range city.Tiles {
			if d := ct.Pos.DistanceTo(u.Pos); best < 0 || d < best {
				best = d
				bestPos = ct.Pos
			}
		}
	}
	if best < 0 {
		return none(reason)
	}
	return target(bestPos, reason)
}

// gatherSite picks the unreserved cell with the best value/ln(dist+2) score
// within range. The first maximum in scan order wins.
func (s *Selector) gatherSite(u *lux.Unit, restrictive bool) Decision {
	m := s.gs.Map
	reserved := s.state.Assigner.Reserved(u.ID)
	maxDist := s.policy.Gather.MaxDistance

	bestScore := 0.0
	var best lux.Position
	found := false
	visit := func(pos lux.Position, value float64) {
		if reserved[pos] {
			return
		}
		if restrictive && m.CellAt(pos).CityTile != nil {
			return
		}
		dist := pos.DistanceTo(u.Pos)
		if dist >= maxDist {
			return
		}
		if score := value / math.Log(float64(dist)+2); score > bestScore {
			bestScore = score
			best = pos
			found = true
		}
	}

	if s.policy.Gather.ResourceCellsOnly {
		for _, c := range m.ResourceCells() {
			visit(c.Pos, s.values.At(c.Pos))
		}
	} else {
		s.values.Each(visit)
	}

	if !found {
		return none("gather")
	}
	return target(best, "gather")
}

// buildSite finds where a full worker should found the next city tile.
func (s *Selector) buildSite(u *lux.Unit) Decision {
	m := s.gs.Map
	if s.me.CityTileCount() == 0 {
		if m.CellAt(u.Pos).IsEmpty() {
			return act(lux.BuildCity(u.ID), "found")
		}
		for _, c := range m.Adjacent(u.Pos) {
			if c.IsEmpty() {
				return act(lux.Move(u.ID, u.Pos.DirectionTo(c.Pos)), "found")
			}
		}
		return act(lux.Move(u.ID, lux.South), "found")
	}

	reserved := s.state.Assigner.Reserved(u.ID)
	bestDist := math.MaxInt
	var best lux.Position
	found := false
	for _, city := range s.me.Cities {
		for _, site := range ExpansionSites(m, city) {
			if reserved[site] {
				continue
			}
			if site.Equals(u.Pos) {
				return act(lux.BuildCity(u.ID), "build")
			}
			d := site.DistanceTo(u.Pos)
			switch {
			case d < bestDist:
				bestDist = d
				best = site
				found = true
			case d == bestDist && s.policy.Build.PreferDiagonal && site.X != u.Pos.X && site.Y != u.Pos.Y:
				best = site
			}
		}
	}

	if bestDist > s.policy.Build.TravelThreshold && u.CanBuild(m) {
		return act(lux.BuildCity(u.ID), "build")
	}
	if !found {
		return none("build")
	}
	return target(best, "build")
}

// exploreSite targets the frontier cell farthest from every existing city.
// ok is false when no cell qualifies, so the caller can fall back to a
// normal expansion site.
func (s *Selector) exploreSite(u *lux.Unit) (Decision, bool) {
	m := s.gs.Map
	tiles := s.me.CityTilePositions()

	bestDist := 0
	var best lux.Position
	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			if d := frontierDistance(m, lux.Position{X: x, Y: y}, tiles); d > bestDist {
				bestDist = d
				best = lux.Position{X: x, Y: y}
			}
		}
	}
	if bestDist == 0 {
		return Decision{}, false
	}
	if best.Equals(u.Pos) {
		s.explorer = ""
		return act(lux.BuildCity(u.ID), "explore"), true
	}
	return target(best, "explore"), true
}

// frontierMargin keeps explorers away from the map border.
const frontierMargin = 3

func frontierDistance(m *lux.GameMap, pos lux.Position, tiles []lux.Position) int {
	c := m.CellAt(pos)
	if c.HasResource() || c.CityTile != nil {
		return 0
	}
	if pos.X < frontierMargin || pos.Y < frontierMargin ||
		pos.X > m.Width-frontierMargin-1 || pos.Y > m.Height-frontierMargin-1 {
		return 0
	}
	closest := 0
	for i, t := range tiles {
		if d := t.DistanceTo(pos); i == 0 || d < closest {
			closest = d
		}
	}
	return closest
}

// ExpansionSites returns the empty cells bordering a city, deduplicated, in
// tile then neighbour order.
func ExpansionSites(m *lux.GameMap, city *lux.City) []lux.Position {
	seen := make(map[lux.Position]bool)
	var out []lux.Position
	for _, ct := range city.Tiles {
		for _, c := range m.Adjacent(ct.Pos) {
			if seen[c.Pos] || !c.IsEmpty() {
				continue
			}
			seen[c.Pos] = true
			out = append(out, c.Pos)
		}
	}
	return out
}

// CitiesPowered reports whether every checked city holds the fuel the
// active power tier demands. Before any tier applies, cities count as
// powered.
func CitiesPowered(p *lux.Player, phase int, rule PowerRule) bool {
	var tier *PowerTier
	for i := range rule.Tiers {
		t := &rule.Tiers[i]
		if phase > t.AfterPhase && (tier == nil || t.AfterPhase > tier.AfterPhase) {
			tier = t
		}
	}
	if tier == nil {
		return true
	}
	total := p.CityTileCount()
	for _, c := range p.Cities {
		if rule.LargeCitiesOnly && 3*len(c.Tiles) <= total {
			continue
		}
		if c.Fuel < math.Ceil(c.LightUpkeep*tier.UpkeepMultiplier+tier.Reserve) {
			return false
		}
	}
	return true
}
