// SPDX-License-Identifier: EPL-2.0

// Package engine is the realtime-safe playback engine: a pure function
// invoked from the audio callback that turns a Model snapshot plus a Servo
// into one block of stereo output. Nothing in this package allocates,
// blocks, or loops unboundedly — the block loop is bounded by
// cfg.BufferSize and chunk lookup is the O(log n) lookup of model.LoadedChunks.
package engine

import (
	"math"

	"github.com/ik5/afstream/atomics"
	"github.com/ik5/afstream/config"
	"github.com/ik5/afstream/model"
	"github.com/ik5/afstream/servo"
)

// Output holds pointers to the two pre-allocated, pre-sized (at least
// cfg.BufferSize long) output channels. The caller owns the backing
// storage; Process only ever writes into it.
type Output = [2][]float32

// ChunkIdx returns the chunk that frame fr falls inside of, via truncating
// integer division.
func ChunkIdx(fr uint64, chunkSize int) uint64 {
	return fr / uint64(chunkSize)
}

// ChunkBegFrame returns the first source frame covered by chunk idx.
func ChunkBegFrame(idx uint64, chunkSize int) uint64 {
	return idx * uint64(chunkSize)
}

// LocalFrame returns fr's offset within its chunk.
func LocalFrame(fr uint64, chunkSize int) uint64 {
	return fr % uint64(chunkSize)
}

// Quantize rounds v down to the nearest multiple of step.
func Quantize(v, step uint64) uint64 {
	return v - (v % step)
}

func chunkIdxFloat(fr float64, chunkSize int) uint64 {
	return uint64(math.Floor(fr / float64(chunkSize)))
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Process implements §4.4 of the playback contract: seek pickup, chunk
// math, sample generation (single-chunk nearest-neighbor or cross-chunk
// linear interpolation), mono duplication, end-of-stream detection, and
// fulfilling a pending playback-position request. It is the only place
// that mutates srv or atoms from the audio thread.
func Process(srv *servo.Servo, atoms *atomics.Shared, snap model.Model, cfg config.Config, hostSR float64, out Output) {
	if srv.State == servo.Finished {
		return
	}

	if snap.Target.SeekPos != srv.PlaybackBeg {
		srv.PlaybackBeg = snap.Target.SeekPos
		srv.PlaybackPos = float64(snap.Target.SeekPos)
	}

	frameInc := float64(snap.Header.SourceSampleRate) / hostSR
	bufSize := cfg.BufferSize

	frBeg := srv.PlaybackPos
	frEnd := srv.PlaybackPos + float64(bufSize)*frameInc
	chunkBeg := chunkIdxFloat(frBeg, cfg.ChunkSize)
	chunkEnd := chunkIdxFloat(frEnd, cfg.ChunkSize)

	if chunkBeg == chunkEnd {
		processSingleChunk(srv, atoms, snap, cfg, chunkBeg, frameInc, out)
	} else {
		processTransition(srv, atoms, snap, cfg, frameInc, out)
	}

	reportPlaybackPosIfRequested(srv, atoms)
}

// processSingleChunk is the §4.4 single-chunk path. Per the spec's
// open question, playback_pos only advances when the chunk is present —
// this asymmetry with the transition path is intentional, not a bug fix.
func processSingleChunk(srv *servo.Servo, atoms *atomics.Shared, m model.Model, cfg config.Config, chunkIdx uint64, frameInc float64, out Output) {
	bufSize := cfg.BufferSize
	channels := min(2, m.Header.ChannelCount)

	if chunk, ok := m.LoadedChunks.Get(chunkIdx); ok {
		for c := 0; c < channels; c++ {
			fr := srv.PlaybackPos
			for i := 0; i < bufSize; i++ {
				local := uint64(fr) % uint64(cfg.ChunkSize)
				out[c][i] = chunk.Sample(c, local)
				fr += frameInc
			}
		}
		srv.PlaybackPos += float64(bufSize) * frameInc
		finishIfReachedEnd(srv, atoms, m)
	}

	if m.Header.ChannelCount < 2 {
		copy(out[1][:bufSize], out[0][:bufSize])
	}
}

// processTransition is the §4.4 cross-chunk path: it always advances
// playback_pos and always runs the end check, whether or not either side
// of the crossing is loaded.
func processTransition(srv *servo.Servo, atoms *atomics.Shared, m model.Model, cfg config.Config, frameInc float64, out Output) {
	bufSize := cfg.BufferSize
	channels := min(2, m.Header.ChannelCount)

	for c := 0; c < channels; c++ {
		fr := srv.PlaybackPos
		for i := 0; i < bufSize; i++ {
			frFloor := math.Floor(fr)
			frA := uint64(frFloor)
			frB := uint64(math.Ceil(fr))
			t := float32(fr - frFloor)

			valueA := sampleAt(m, cfg, c, frA)
			valueB := sampleAt(m, cfg, c, frB)
			out[c][i] = lerp(valueA, valueB, t)

			fr += frameInc
		}
	}

	if m.Header.ChannelCount < 2 {
		copy(out[1][:bufSize], out[0][:bufSize])
	}

	srv.PlaybackPos += float64(bufSize) * frameInc
	finishIfReachedEnd(srv, atoms, m)
}

func sampleAt(m model.Model, cfg config.Config, channel int, fr uint64) float32 {
	chunk, ok := m.LoadedChunks.Get(ChunkIdx(fr, cfg.ChunkSize))
	if !ok {
		return 0
	}
	return chunk.Sample(channel, LocalFrame(fr, cfg.ChunkSize))
}

func finishIfReachedEnd(srv *servo.Servo, atoms *atomics.Shared, m model.Model) {
	if srv.PlaybackPos >= float64(model.EstimatedFrameCount(m)) {
		srv.State = servo.Finished
		atoms.SetReportedFinished(true)
	}
}

func reportPlaybackPosIfRequested(srv *servo.Servo, atoms *atomics.Shared) {
	if atoms.RequestPlaybackPos() {
		atoms.SetReportedPlaybackPos(srv.PlaybackPos)
		atoms.SetRequestPlaybackPos(false)
	}
}
