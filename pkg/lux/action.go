package lux

import (
	"fmt"
	"strings"
)

// Action is one command in Lux kit syntax.
type Action string

// Move orders a unit one step in direction d.
func Move(unitID string, d Direction) Action {
	return Action(fmt.Sprintf("m %s %s", unitID, d))
}

// BuildCity orders a unit to found a city tile where it stands.
func BuildCity(unitID string) Action {
	return Action("bcity " + unitID)
}

// BuildWorker orders the city tile at pos to spawn a worker.
func BuildWorker(pos Position) Action {
	return Action(fmt.Sprintf("bw %d %d", pos.X, pos.Y))
}

// Research orders the city tile at pos to research.
func Research(pos Position) Action {
	return Action(fmt.Sprintf("r %d %d", pos.X, pos.Y))
}

// Circle is a debug annotation around a cell.
func Circle(pos Position) Action {
	return Action(fmt.Sprintf("dc %d %d", pos.X, pos.Y))
}

// Line is a debug annotation between two cells.
func Line(from, to Position) Action {
	return Action(fmt.Sprintf("dl %d %d %d %d", from.X, from.Y, to.X, to.Y))
}

// Sidetext is a debug annotation shown beside the board.
func Sidetext(msg string) Action {
	return Action(fmt.Sprintf("dst '%s'", strings.ReplaceAll(msg, "'", "")))
}

// Kind returns the command verb, e.g. "m" or "bcity".
func (a Action) Kind() string {
	s := string(a)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// IsAnnotation reports whether the action is cosmetic.
func (a Action) IsAnnotation() bool {
	switch a.Kind() {
	case "dc", "dx", "dl", "dt", "dst":
		return true
	}
	return false
}

// JoinActions drops empty actions and joins the rest with commas,
// the form the kit expects on stdout.
func JoinActions(actions []Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		if a != "" {
			parts = append(parts, string(a))
		}
	}
	return strings.Join(parts, ",")
}
