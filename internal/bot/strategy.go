package bot

import (
	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/pkg/lux"
)

// Strategy decides one player's actions each turn.
type Strategy interface {
	Name() string
	Decide(gs *lux.GameState) TurnResult
}

// ExplorerMemory is implemented by strategies that remember a designated
// explorer unit across turns. Not all strategies do; use a type assertion
// to check.
type ExplorerMemory interface {
	Explorer() string
	RestoreExplorer(id string)
}

// StrategyForVariant returns a fresh agent for the named policy. Unknown
// names fall back to DefaultVariant. A nil policies map means the presets.
func StrategyForVariant(name string, policies map[string]Policy) Strategy {
	if policies == nil {
		policies = Presets()
	}
	p, ok := policies[name]
	if !ok {
		log.Warn().Str("variant", name).Str("fallback", DefaultVariant).Msg("Unknown bot variant")
		p = Presets()[DefaultVariant]
		if custom, ok := policies[DefaultVariant]; ok {
			p = custom
		}
	}
	return NewAgent(p)
}
