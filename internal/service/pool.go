package service

import (
	"sync"

	"github.com/freeeve/luxbot/internal/bot"
)

// matchAgent is one match's strategy. Its mutex serializes turns of the
// same match; different matches decide concurrently.
type matchAgent struct {
	mu       sync.Mutex
	strategy bot.Strategy
	fresh    bool // explorer not yet restored from the cache
}

// AgentPool keeps one live strategy per match.
type AgentPool struct {
	mu     sync.Mutex
	agents map[string]*matchAgent
}

// NewAgentPool creates an empty pool.
func NewAgentPool() *AgentPool {
	return &AgentPool{agents: make(map[string]*matchAgent)}
}

// acquire returns the match's agent locked, creating it with newStrategy
// when absent. The caller must unlock it.
func (p *AgentPool) acquire(matchID string, newStrategy func() bot.Strategy) *matchAgent {
	p.mu.Lock()
	a, ok := p.agents[matchID]
	if !ok {
		a = &matchAgent{strategy: newStrategy(), fresh: true}
		p.agents[matchID] = a
	}
	p.mu.Unlock()
	a.mu.Lock()
	return a
}

// Remove drops a match's agent.
func (p *AgentPool) Remove(matchID string) {
	p.mu.Lock()
	delete(p.agents, matchID)
	p.mu.Unlock()
}

// Len returns the number of live agents.
func (p *AgentPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.agents)
}
