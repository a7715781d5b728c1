package network

import "sync"

// Event is a broadcast notification about session or connectivity state
type Event int

const (
	// EventSessionExpired fires on every invalid-session response
	EventSessionExpired Event = iota + 1
	// EventSDKDeprecated fires on every sdk-deprecated response
	EventSDKDeprecated
	// EventServerMaintenance fires when a request hits maintenance
	EventServerMaintenance
	// EventNetworkUnreachable fires when a request gets no response
	EventNetworkUnreachable
	// EventNetworkRestored fires when the monitor reports reachable again
	EventNetworkRestored
)

// String returns the string representation of an Event
func (e Event) String() string {
	switch e {
	case EventSessionExpired:
		return "session_expired"
	case EventSDKDeprecated:
		return "sdk_deprecated"
	case EventServerMaintenance:
		return "server_maintenance"
	case EventNetworkUnreachable:
		return "network_unreachable"
	case EventNetworkRestored:
		return "network_restored"
	default:
		return "unknown"
	}
}

type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (b *broadcaster) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// publish calls subscribers synchronously, outside the lock so they may
// subscribe or unsubscribe
func (b *broadcaster) publish(e Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
