// SPDX-License-Identifier: EPL-2.0

// Package afstream is the async audio file streamer described by this
// module: a realtime-safe playback engine fed by a background loader, with
// a small control surface for seeking and querying state. Callers open an
// Input Stream (see package stream), hand it to New, and drive Process
// from their audio callback.
package afstream

import (
	"github.com/ik5/afstream/atomics"
	"github.com/ik5/afstream/config"
	"github.com/ik5/afstream/engine"
	"github.com/ik5/afstream/loader"
	"github.com/ik5/afstream/model"
	"github.com/ik5/afstream/servo"
	"github.com/ik5/afstream/store"
	"github.com/ik5/afstream/stream"
)

// Streamer is the façade of §4.6: it wires the Model Store, the shared
// atomics, the Servo, and a background Loader around one Input Stream. A
// Streamer is safe for its audio-thread, loader, and control-thread
// collaborators to use concurrently, each within its own contract.
// Concurrent Seek calls from several goroutines are serialized by the Model
// Store's UpdatePublish, not by any lock in this type.
type Streamer struct {
	cfg   config.Config
	store *store.Store
	atoms *atomics.Shared
	srv   *servo.Servo
	ldr   *loader.Loader
	in    stream.InputStream
}

// New opens s (taking ownership of it for the Streamer's lifetime),
// publishes the initial Model from its Header, and spawns the loader
// worker. cfg is validated; New returns an error instead of a Streamer
// if it is incoherent.
func New(s stream.InputStream, cfg config.Config) (*Streamer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	header := s.Header()
	st := store.New(model.NewInitial(header))
	atoms := &atomics.Shared{}

	return &Streamer{
		cfg:   cfg,
		store: st,
		atoms: atoms,
		srv:   servo.New(),
		ldr:   loader.Start(s, st, atoms, cfg),
		in:    s,
	}, nil
}

// Process runs exactly the §4.4 pipeline for one audio block: it is
// realtime-safe and must only ever be called from the audio thread. out's
// two slices must each be at least cfg.BufferSize long.
func (st *Streamer) Process(hostSR float64, out engine.Output) {
	snap := st.store.Read()
	engine.Process(st.srv, st.atoms, snap, st.cfg, hostSR, out)
}

// Seek publishes a new Model with its seek target quantized to a multiple
// of BufferSize. Idempotent when pos quantizes to the value already
// published.
func (st *Streamer) Seek(pos uint64) {
	target := engine.Quantize(pos, uint64(st.cfg.BufferSize))
	st.store.UpdatePublish(func(m model.Model) model.Model {
		m.Target.SeekPos = target
		return m
	})
}

// GetHeader returns the header from the latest published Model.
func (st *Streamer) GetHeader() model.Header {
	return st.store.Read().Header
}

// GetEstimatedFrameCount returns the known frame count if the Header has
// discovered one, otherwise the Model's running estimate.
func (st *Streamer) GetEstimatedFrameCount() uint64 {
	return model.EstimatedFrameCount(st.store.Read())
}

// GetChunkInfo drives a caller-provided bitmap builder over the currently
// loaded chunk ids; see model.ChunkInfo.
func (st *Streamer) GetChunkInfo(reserve func(n int), resize func(n int, fill bool), set func(id uint64, v bool)) {
	model.ChunkInfo(st.store.Read(), reserve, resize, set)
}

// IsPlaying reports whether the audio thread has not yet reached
// end-of-stream.
func (st *Streamer) IsPlaying() bool {
	return !st.atoms.ReportedFinished()
}

// GetPlaybackPos returns the last position the audio thread reported.
func (st *Streamer) GetPlaybackPos() float64 {
	return st.atoms.ReportedPlaybackPos()
}

// RequestPlaybackPos sets the request flag; the audio thread fulfills it
// at the end of its next Process call, after advancing the position. A
// Process call made once playback has finished does not fulfill it.
func (st *Streamer) RequestPlaybackPos() {
	st.atoms.SetRequestPlaybackPos(true)
}

// Close stops the loader worker, joins it, and releases the Input Stream.
// A Streamer must not be used after Close.
func (st *Streamer) Close() error {
	st.ldr.Stop()
	return st.in.Close()
}
