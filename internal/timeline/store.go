package timeline

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/wavecraft-audio/wavecraft/internal/engine"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
)

// defaultNameLimit bounds the numeric suffix search of NextAvailableName.
const defaultNameLimit = 10000

// Store holds timeline markers and notifies subscribers on structural and
// payload changes. Subscriptions fire synchronously on the mutating
// goroutine, mirroring the engine's same-thread change signals.
type Store struct {
	mu          sync.Mutex
	markers     []*Marker
	changeSubs  []subscription
	payloadSubs []subscription
	nextSubID   int
	nameLimit   int
	logger      *slog.Logger
}

type subscription struct {
	id int
	fn func()
}

// Option configures a Store.
type Option func(*Store)

// WithNameLimit bounds the suffix search of NextAvailableName. Useful when
// exercising the name-exhaustion path.
func WithNameLimit(n int) Option {
	return func(s *Store) {
		s.nameLimit = n
	}
}

// NewStore creates an empty marker store.
func NewStore(opts ...Option) *Store {
	logger := logging.ForService("timeline")
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		nameLimit: defaultNameLimit,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMarker creates a detached marker. It joins the store (and triggers the
// structural-change notification) only once passed to Add.
func (s *Store) NewMarker(name string, start engine.FramePos) *Marker {
	return &Marker{
		id:    uuid.New(),
		name:  name,
		start: start,
	}
}

// Add inserts a marker into the store and notifies structural-change
// subscribers.
func (s *Store) Add(m *Marker) {
	s.mu.Lock()
	m.store = s
	s.markers = append(s.markers, m)
	s.mu.Unlock()

	s.logger.Debug("marker added", "name", m.Name(), "start", int64(m.Start()))
	s.notifyChanged()
}

// Remove deletes a marker from the store and notifies structural-change
// subscribers. Unknown markers are ignored.
func (s *Store) Remove(m *Marker) {
	s.mu.Lock()
	removed := false
	for i, existing := range s.markers {
		if existing == m {
			s.markers = append(s.markers[:i], s.markers[i+1:]...)
			m.store = nil
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.notifyChanged()
	}
}

// Markers returns a snapshot of all markers in insertion order.
func (s *Store) Markers() []*Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// MarkAt returns the marker closest to pos within slop frames, or nil if
// none is near enough.
func (s *Store) MarkAt(pos, slop engine.FramePos) *Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *Marker
	var bestDist engine.FramePos
	for _, m := range s.markers {
		dist := m.start - pos
		if dist < 0 {
			dist = -dist
		}
		if dist > slop {
			continue
		}
		if best == nil || dist < bestDist {
			best = m
			bestDist = dist
		}
	}
	return best
}

// NextAvailableName returns prefix plus the smallest unused positive
// numeric suffix. It reports false when the bounded search is exhausted.
func (s *Store) NextAvailableName(prefix string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := make(map[string]struct{}, len(s.markers))
	for _, m := range s.markers {
		used[m.name] = struct{}{}
	}

	for i := 1; i <= s.nameLimit; i++ {
		candidate := fmt.Sprintf("%s%d", prefix, i)
		if _, taken := used[candidate]; !taken {
			return candidate, true
		}
	}
	return "", false
}

// OnChange subscribes to structural changes (markers added or removed).
// The returned function unsubscribes.
func (s *Store) OnChange(fn func()) func() {
	return s.subscribe(&s.changeSubs, fn)
}

// OnPayloadChange subscribes to payload replacement on any marker.
func (s *Store) OnPayloadChange(fn func()) func() {
	return s.subscribe(&s.payloadSubs, fn)
}

func (s *Store) subscribe(list *[]subscription, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	*list = append(*list, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := *list
		for i, sub := range subs {
			if sub.id == id {
				*list = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notifyChanged() {
	for _, sub := range s.snapshot(&s.changeSubs) {
		sub()
	}
}

func (s *Store) notifyPayloadChanged() {
	for _, sub := range s.snapshot(&s.payloadSubs) {
		sub()
	}
}

func (s *Store) snapshot(list *[]subscription) []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]func(), 0, len(*list))
	for _, sub := range *list {
		out = append(out, sub.fn)
	}
	return out
}
