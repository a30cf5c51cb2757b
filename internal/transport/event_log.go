package transport

import (
	"sort"
	"sync"

	"github.com/theodoreOnzGit/teh-o/internal/logger"
)

type Category uint8

const (
	EventScatter Category = iota // scattered at a collision
	EventAbsorb                  // absorbed at a collision
	EventLeak                    // left through a vacuum boundary
	EventReflect                 // reflected on a reflective boundary
	EventCross                   // crossed a transmission surface
	EventLost                    // exceeded the event limit
	EventCutoff                  // born below the energy cutoff
)

type EventLog struct {
	Name     string
	Category Category
	ID       int64
	Position Position
	Dir      Direction
	Event    int    // event number within the history
	Distance Length // length of the flight that ended here
}

type EventLogCache struct {
	mu     sync.Mutex
	events map[string][]EventLog // map of event name to logs
}

var cache = &EventLogCache{
	events: make(map[string][]EventLog),
}

func logEvent(name string, category Category, p *Particle, distance Length) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.events[name] = append(cache.events[name], EventLog{
		Name:     name,
		Category: category,
		ID:       p.ID,
		Position: p.R,
		Dir:      p.U,
		Event:    p.NEvent,
		Distance: distance,
	})
}

// EventCounts returns the number of logged events per name.
func EventCounts() map[string]int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	out := make(map[string]int, len(cache.events))
	for k, v := range cache.events {
		out[k] = len(v)
	}
	return out
}

// ResetEventLog drops all logged events.
func ResetEventLog() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.events = make(map[string][]EventLog)
}

func eventStats() {
	counts := EventCounts()
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		logger.Debug("event log", "event", k, "count", counts[k])
	}
}
