package bot

import "github.com/freeeve/luxbot/pkg/lux"

// Assigner hands out mutually exclusive targets to units. TargetRegistry is
// the first-claim-wins table; a matching-based assigner can replace it
// without touching the router or scheduler.
type Assigner interface {
	// Reserve records pos as the target of unitID, replacing any previous one.
	Reserve(unitID string, pos lux.Position)
	// Reserved returns every target held by a unit other than excluding.
	Reserved(excluding string) map[lux.Position]bool
	// Target returns the recorded target of unitID.
	Target(unitID string) (lux.Position, bool)
	// Reset drops every entry.
	Reset()
}

// TargetRegistry maps unit IDs to their reserved target cell for one turn.
type TargetRegistry struct {
	targets map[string]lux.Position
}

// NewTargetRegistry returns an empty registry.
func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{targets: make(map[string]lux.Position)}
}

func (r *TargetRegistry) Reserve(unitID string, pos lux.Position) {
	r.targets[unitID] = pos
}

func (r *TargetRegistry) Reserved(excluding string) map[lux.Position]bool {
	out := make(map[lux.Position]bool, len(r.targets))
	for id, pos := range r.targets {
		if id != excluding {
			out[pos] = true
		}
	}
	return out
}

func (r *TargetRegistry) Target(unitID string) (lux.Position, bool) {
	pos, ok := r.targets[unitID]
	return pos, ok
}

func (r *TargetRegistry) Reset() {
	clear(r.targets)
}

// Snapshot returns a copy of every entry.
func (r *TargetRegistry) Snapshot() map[string]lux.Position {
	out := make(map[string]lux.Position, len(r.targets))
	for id, pos := range r.targets {
		out[id] = pos
	}
	return out
}
