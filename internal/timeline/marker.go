// Package timeline provides the marker store the scene automation
// scheduler consumes: named timeline markers carrying an optional opaque
// automation payload, with explicit change subscriptions.
package timeline

import (
	"github.com/google/uuid"

	"github.com/wavecraft-audio/wavecraft/internal/engine"
)

// Automation is the capability contract of a marker's automation payload.
// Consumers discriminate payload kinds by asserting to their own concrete
// payload type; foreign kinds are skipped.
type Automation interface {
	// AutomationType identifies the payload kind.
	AutomationType() string
}

// Marker is a named position on the session timeline with an optional
// automation payload. The marker exclusively owns its payload; replacing
// it discards the previous one.
type Marker struct {
	id         uuid.UUID
	name       string
	start      engine.FramePos
	automation Automation
	store      *Store // set once added to a store
}

// ID returns the marker's unique identity.
func (m *Marker) ID() uuid.UUID {
	return m.id
}

// Name returns the marker's display name.
func (m *Marker) Name() string {
	return m.name
}

// Start returns the marker's timeline position.
func (m *Marker) Start() engine.FramePos {
	return m.start
}

// Automation returns the marker's payload, nil if none is attached.
func (m *Marker) Automation() Automation {
	return m.automation
}

// SetAutomation replaces the marker's payload. If the marker belongs to a
// store, the store's payload-changed subscribers are notified.
func (m *Marker) SetAutomation(a Automation) {
	m.automation = a
	if m.store != nil {
		m.store.notifyPayloadChanged()
	}
}
