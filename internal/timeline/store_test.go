package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecraft-audio/wavecraft/internal/engine"
)

type fakePayload struct{ program int }

func (f *fakePayload) AutomationType() string { return "fake" }

func TestAddNotifiesStructuralChange(t *testing.T) {
	s := NewStore()

	changes := 0
	s.OnChange(func() { changes++ })

	m := s.NewMarker("Scene 1", 1000)
	assert.Zero(t, changes, "detached marker must not notify")

	s.Add(m)
	assert.Equal(t, 1, changes)
	require.Len(t, s.Markers(), 1)
	assert.Equal(t, engine.FramePos(1000), s.Markers()[0].Start())

	s.Remove(m)
	assert.Equal(t, 2, changes)
	assert.Empty(t, s.Markers())
}

func TestSetAutomationNotifiesPayloadChange(t *testing.T) {
	s := NewStore()

	payloadChanges := 0
	s.OnPayloadChange(func() { payloadChanges++ })

	m := s.NewMarker("Scene 1", 0)
	m.SetAutomation(&fakePayload{program: 1})
	assert.Zero(t, payloadChanges, "detached marker must not notify")

	s.Add(m)
	m.SetAutomation(&fakePayload{program: 2})
	assert.Equal(t, 1, payloadChanges)

	p, ok := m.Automation().(*fakePayload)
	require.True(t, ok)
	assert.Equal(t, 2, p.program, "payload replacement must discard the prior payload")
}

func TestMarkAtSlopMatching(t *testing.T) {
	s := NewStore()
	near := s.NewMarker("near", 1000)
	far := s.NewMarker("far", 1200)
	s.Add(near)
	s.Add(far)

	assert.Nil(t, s.MarkAt(500, 100), "nothing within slop")
	assert.Same(t, near, s.MarkAt(1010, 50))
	assert.Same(t, near, s.MarkAt(1090, 150), "closest marker wins when several match")
	assert.Same(t, near, s.MarkAt(1000, 0), "zero slop matches exact position only")
	assert.Nil(t, s.MarkAt(1001, 0))
}

func TestNextAvailableName(t *testing.T) {
	s := NewStore(WithNameLimit(3))

	name, ok := s.NextAvailableName("Scene ")
	require.True(t, ok)
	assert.Equal(t, "Scene 1", name)

	s.Add(s.NewMarker("Scene 1", 0))
	s.Add(s.NewMarker("Scene 2", 10))

	name, ok = s.NextAvailableName("Scene ")
	require.True(t, ok)
	assert.Equal(t, "Scene 3", name)

	s.Add(s.NewMarker("Scene 3", 20))
	_, ok = s.NextAvailableName("Scene ")
	assert.False(t, ok, "bounded search must report exhaustion")
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := NewStore()

	calls := 0
	unsub := s.OnChange(func() { calls++ })

	s.Add(s.NewMarker("a", 0))
	assert.Equal(t, 1, calls)

	unsub()
	s.Add(s.NewMarker("b", 1))
	assert.Equal(t, 1, calls)
}
