// Package engine defines the contracts shared by the per-cycle processing
// components: timeline frame positions, channel counts, the audio/MIDI
// buffer set a cycle operates on, the host processor contract, and the
// transport collaborator.
//
// Slot order inside a BufferSet is fixed: MIDI-type slots first, then
// audio-type slots. Every per-channel array in the processing components
// follows the same order.
package engine
