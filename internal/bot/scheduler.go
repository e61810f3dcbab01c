package bot

import "github.com/freeeve/luxbot/pkg/lux"

// Resolution is the outcome of one turn's movement sweep.
type Resolution struct {
	Actions    []lux.Action
	Passes     int
	Unresolved int
}

// Scheduler repeatedly routes every pending unit until a full pass moves
// nobody. A unit blocked by a friend's start cell can succeed in a later
// pass once that friend has stepped away.
type Scheduler struct {
	router    *Router
	assigner  Assigner
	occupancy *Occupancy
	building  map[string]bool
}

// NewScheduler wires a scheduler to the turn's router and state.
func NewScheduler(router *Router, ts *TurnState) *Scheduler {
	return &Scheduler{
		router:    router,
		assigner:  ts.Assigner,
		occupancy: ts.Occupancy,
		building:  ts.Building,
	}
}

// Resolve moves the pending units. Each unit moves at most once; the sweep
// is bounded to len(pending)+1 passes since every productive pass resolves
// at least one unit.
func (s *Scheduler) Resolve(pending []*lux.Unit) Resolution {
	var res Resolution
	maxPasses := len(pending) + 1

	for res.Passes < maxPasses {
		res.Passes++
		moved := 0
		for _, u := range pending {
			if !s.waiting(u) {
				continue
			}
			target, _ := s.assigner.Target(u.ID)
			if a, ok := s.router.Step(u, target, !s.building[u.ID]); ok {
				res.Actions = append(res.Actions, a)
				moved++
			}
		}
		if moved == 0 {
			break
		}
	}

	for _, u := range pending {
		if s.waiting(u) {
			if target, _ := s.assigner.Target(u.ID); !u.Pos.Equals(target) {
				res.Unresolved++
			}
		}
	}
	return res
}

// waiting reports whether u can still be routed: it can act, has a target
// and has not left its start cell.
func (s *Scheduler) waiting(u *lux.Unit) bool {
	if !u.CanAct() {
		return false
	}
	if _, ok := s.assigner.Target(u.ID); !ok {
		return false
	}
	pos, ok := s.occupancy.Position(u.ID)
	return !ok || pos.Equals(u.Pos)
}
