package engine

import "fmt"

// ChanCount counts channel slots by type. Metering and automation slots
// are laid out MIDI first, audio second.
type ChanCount struct {
	MIDI  int
	Audio int
}

// NTotal returns the total number of channel slots.
func (c ChanCount) NTotal() int {
	return c.MIDI + c.Audio
}

func (c ChanCount) String() string {
	return fmt.Sprintf("{midi: %d, audio: %d}", c.MIDI, c.Audio)
}
