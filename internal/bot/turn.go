package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/pkg/lux"
)

// TurnState holds everything that lives for exactly one turn: target
// reservations, committed unit positions and the set of units heading to a
// build site. A fresh TurnState is created for every Decide call.
type TurnState struct {
	Assigner  Assigner
	Occupancy *Occupancy
	Building  map[string]bool
}

// NewTurnState returns a state seeded with the units' start positions.
func NewTurnState(units []*lux.Unit) *TurnState {
	occ := NewOccupancy()
	occ.Seed(units)
	return &TurnState{
		Assigner:  NewTargetRegistry(),
		Occupancy: occ,
		Building:  make(map[string]bool),
	}
}

// TurnResult is the output of one Decide call.
type TurnResult struct {
	Turn       int                     `json:"turn"`
	Actions    []lux.Action            `json:"actions"`
	Targets    map[string]lux.Position `json:"targets"`
	Passes     int                     `json:"passes"`
	Unresolved int                     `json:"unresolved"`
	Builders   int                     `json:"builders"`
	Explorer   string                  `json:"explorer,omitempty"`
	Moves      int                     `json:"moves"`
}

// Agent is the long-lived decision maker for one player in one match. The
// only state it carries between turns is the remembered explorer.
type Agent struct {
	policy   Policy
	explorer string
}

// NewAgent returns an agent running the given policy.
func NewAgent(p Policy) *Agent {
	return &Agent{policy: p}
}

func (a *Agent) Name() string { return a.policy.Name }

// Policy returns the agent's tuning.
func (a *Agent) Policy() Policy { return a.policy }

// Explorer returns the remembered explorer unit ID, if any.
func (a *Agent) Explorer() string { return a.explorer }

// RestoreExplorer sets the remembered explorer, e.g. after a restart.
func (a *Agent) RestoreExplorer(id string) { a.explorer = id }

// Decide computes every action for the player's units and city tiles this
// turn. Unit actions come first, then moves, then city actions, then
// annotations.
func (a *Agent) Decide(gs *lux.GameState) TurnResult {
	start := time.Now()
	me := gs.Me()

	if a.explorer != "" && !hasUnit(me, a.explorer) {
		log.Info().Str("unit", a.explorer).Int("turn", gs.Turn).Msg("Explorer lost")
		a.explorer = ""
	}

	ts := NewTurnState(me.Units)
	values := BuildValueMap(gs.Map, me, a.policy.Values)
	sel := NewSelector(gs, a.policy, ts, values, a.explorer)

	res := TurnResult{Turn: gs.Turn, Targets: make(map[string]lux.Position)}
	var (
		immediate []lux.Action
		pending   []*lux.Unit
		notes     []lux.Action
	)
	for _, u := range me.Units {
		d := sel.Choose(u)
		switch d.Kind {
		case DecisionAction:
			if u.CanAct() {
				immediate = append(immediate, d.Action)
			}
		case DecisionTarget:
			ts.Assigner.Reserve(u.ID, d.Target)
			if d.Building {
				ts.Building[u.ID] = true
			}
			res.Targets[u.ID] = d.Target
			pending = append(pending, u)
			if a.policy.Annotate {
				notes = append(notes, lux.Line(u.Pos, d.Target))
			}
		}
	}

	router := NewRouter(gs.Map, ts.Occupancy, me, gs.Opponent())
	moves := NewScheduler(router, ts).Resolve(pending)

	res.Actions = append(res.Actions, immediate...)
	res.Actions = append(res.Actions, moves.Actions...)
	res.Actions = append(res.Actions, AllocateCityActions(me, len(me.Units), a.policy.Cities)...)
	if a.policy.Annotate {
		if sel.Explorer() != "" {
			if pos, ok := res.Targets[sel.Explorer()]; ok {
				notes = append(notes, lux.Circle(pos))
			}
		}
		notes = append(notes, lux.Sidetext(fmt.Sprintf("%s passes=%d builders=%d", a.policy.Name, moves.Passes, sel.Builders())))
		res.Actions = append(res.Actions, notes...)
	}

	res.Passes = moves.Passes
	res.Unresolved = moves.Unresolved
	res.Moves = len(moves.Actions)
	res.Builders = sel.Builders()

	if next := sel.Explorer(); next != a.explorer {
		log.Info().Str("from", a.explorer).Str("to", next).Int("turn", gs.Turn).Msg("Explorer changed")
		a.explorer = next
	}
	res.Explorer = a.explorer

	log.Debug().
		Str("policy", a.policy.Name).
		Int("turn", gs.Turn).
		Int("units", len(me.Units)).
		Int("actions", len(res.Actions)).
		Int("passes", res.Passes).
		Int("unresolved", res.Unresolved).
		Dur("elapsed", time.Since(start)).
		Msg("Turn decided")
	return res
}

func hasUnit(p *lux.Player, id string) bool {
	for _, u := range p.Units {
		if u.ID == id {
			return true
		}
	}
	return false
}
