// SPDX-License-Identifier: EPL-2.0

// Package servo holds the audio-thread-exclusive playback cursor. Nothing
// here is safe to touch from any thread but the realtime audio callback;
// the Servo is never shared, only the Model and the atomics are.
package servo

// State is the Servo's two-state machine.
type State int

const (
	// Playing is the initial state.
	Playing State = iota
	// Finished is terminal: once reached, a Streamer is a spent instance.
	Finished
)

// Servo is created playing at position 0 and transitions to Finished at
// most once.
type Servo struct {
	State       State
	PlaybackBeg uint64
	PlaybackPos float64
}

// New returns a Servo playing from the origin.
func New() *Servo {
	return &Servo{State: Playing}
}
