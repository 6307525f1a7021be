package memory

import "sync"

// Default windowing sizes for the recent-view consumed by prompt assembly.
const (
	DefaultPrefixLength = 100
	DefaultLookbackLength = 100
)

// EpisodicMemory is an ordered, append-only event log. Storage is never
// truncated; only the views Retrieve/RetrieveRecent produce are windowed,
// per spec.md §4.2.
type EpisodicMemory struct {
	mu     sync.RWMutex
	events []EpisodicEvent

	prefixLength   int
	lookbackLength int
}

// NewEpisodicMemory constructs an EpisodicMemory with the given prefix and
// lookback (tail) window sizes. Zero values fall back to the engine
// defaults (100/100).
func NewEpisodicMemory(prefixLength, lookbackLength int) *EpisodicMemory {
	if prefixLength <= 0 {
		prefixLength = DefaultPrefixLength
	}
	if lookbackLength <= 0 {
		lookbackLength = DefaultLookbackLength
	}
	return &EpisodicMemory{prefixLength: prefixLength, lookbackLength: lookbackLength}
}

// Store appends an event. The log is append-only: events are never
// mutated or removed once stored.
func (m *EpisodicMemory) Store(e EpisodicEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Count returns the number of stored events.
func (m *EpisodicMemory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// RetrieveAll returns every stored event, unwindowed.
func (m *EpisodicMemory) RetrieveAll() []EpisodicEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EpisodicEvent, len(m.events))
	copy(out, m.events)
	return out
}

// RetrieveFirst returns the first n events (or fewer, if the log is
// shorter).
func (m *EpisodicMemory) RetrieveFirst(n int) []EpisodicEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n > len(m.events) {
		n = len(m.events)
	}
	if n <= 0 {
		return nil
	}
	out := make([]EpisodicEvent, n)
	copy(out, m.events[:n])
	return out
}

// RetrieveLast returns the last n events (or fewer, if the log is
// shorter).
func (m *EpisodicMemory) RetrieveLast(n int) []EpisodicEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n > len(m.events) {
		n = len(m.events)
	}
	if n <= 0 {
		return nil
	}
	out := make([]EpisodicEvent, n)
	copy(out, m.events[len(m.events)-n:])
	return out
}

// omissionMarker is spliced between the prefix and tail of a windowed view
// to signal that events were skipped.
func omissionMarker() EpisodicEvent {
	return EpisodicEvent{
		Role:     RoleSystem,
		Content:  "... (omitted events) ...",
		omission: true,
	}
}

// Retrieve returns firstN events ++ an omission marker ++ lastN events when
// both are given; just the requested side when only one is given; the
// entire log when neither is given. The marker is included only when
// includeOmissionInfo is true and there is a genuine gap between the two
// windows.
func (m *EpisodicMemory) Retrieve(firstN, lastN int, includeOmissionInfo bool) []EpisodicEvent {
	m.mu.RLock()
	total := len(m.events)
	m.mu.RUnlock()

	switch {
	case firstN > 0 && lastN > 0:
		first := m.RetrieveFirst(firstN)
		last := m.RetrieveLast(lastN)
		skipped := total - len(first) - len(last)
		out := make([]EpisodicEvent, 0, len(first)+1+len(last))
		out = append(out, first...)
		if includeOmissionInfo && skipped > 0 {
			out = append(out, omissionMarker())
		}
		out = append(out, last...)
		return out
	case firstN > 0:
		return m.RetrieveFirst(firstN)
	case lastN > 0:
		return m.RetrieveLast(lastN)
	default:
		return m.RetrieveAll()
	}
}

// RetrieveRecent returns the prompt-facing window: the fixed prefix, an
// optional omission marker, and the tail lookback window. If the log fits
// entirely inside the prefix, or the lookback length is non-positive, only
// the prefix (plus marker, if applicable) is returned.
func (m *EpisodicMemory) RetrieveRecent(includeOmissionInfo bool) []EpisodicEvent {
	m.mu.RLock()
	total := len(m.events)
	m.mu.RUnlock()

	if total <= m.prefixLength || m.lookbackLength <= 0 {
		return m.Retrieve(m.prefixLength, 0, includeOmissionInfo)
	}
	if total <= m.prefixLength+m.lookbackLength {
		// Prefix and tail windows would overlap; no gap to omit, so the
		// whole log is smaller than the sum of the two windows anyway.
		return m.RetrieveAll()
	}
	return m.Retrieve(m.prefixLength, m.lookbackLength, includeOmissionInfo)
}
