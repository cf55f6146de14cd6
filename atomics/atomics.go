// SPDX-License-Identifier: EPL-2.0

// Package atomics holds the tiny set of lock-free flags used for
// realtime-safe signalling between the audio thread, the loader, and
// control threads. All three fields are advisory: strict ordering between
// them and Model publication is unnecessary because chunk visibility rides
// on the Model Store's own release/acquire semantics, not on these flags.
package atomics

import (
	"math"
	"sync/atomic"
)

// Shared is the SharedAtomics of the spec: request_playback_pos,
// reported_finished, and reported_playback_pos.
type Shared struct {
	requestPlaybackPos atomic.Bool
	reportedFinished   atomic.Bool
	reportedPos        atomic.Uint64 // bit pattern of a float64, see math.Float64bits
}

// RequestPlaybackPos reports whether the loader is waiting on the audio
// thread to publish its current position.
func (s *Shared) RequestPlaybackPos() bool {
	return s.requestPlaybackPos.Load()
}

// SetRequestPlaybackPos sets or clears the request flag.
func (s *Shared) SetRequestPlaybackPos(v bool) {
	s.requestPlaybackPos.Store(v)
}

// ReportedFinished reports whether the audio thread has ever reached
// end-of-stream. engine.Process only ever sets it to true, so in use it
// goes from false to true at most once; SetReportedFinished itself stores
// whichever value it is given.
func (s *Shared) ReportedFinished() bool {
	return s.reportedFinished.Load()
}

// SetReportedFinished sets the finished flag.
func (s *Shared) SetReportedFinished(v bool) {
	s.reportedFinished.Store(v)
}

// ReportedPlaybackPos returns the last position the audio thread reported.
func (s *Shared) ReportedPlaybackPos() float64 {
	return math.Float64frombits(s.reportedPos.Load())
}

// SetReportedPlaybackPos stores a new reported position.
func (s *Shared) SetReportedPlaybackPos(v float64) {
	s.reportedPos.Store(math.Float64bits(v))
}
