package service

// Match event types pushed to observers.
const (
	EventTurnDecided   = "turn_decided"
	EventMatchFinished = "match_finished"
)

// Broadcaster sends real-time events to connected observers.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastMatchEvent(matchID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastMatchEvent(string, string, any) {}
