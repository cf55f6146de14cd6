// SPDX-License-Identifier: EPL-2.0

// Package model holds the value-semantic snapshot of decoding state that is
// shared, by publication, between the loader, the audio thread, and any
// control threads. Nothing in this package is mutated after it has been
// handed to a reader; every transformation produces a new value.
package model

import "github.com/benbjohnson/immutable"

// FormatTag distinguishes containers the loader cannot seek cheaply in
// (mp3) from everything else. It is carried in the Header only as a label:
// the loader's next-chunk decision reads the stream's CanSeekCheaply, not
// this tag.
type FormatTag int

const (
	FormatOther FormatTag = iota
	FormatMP3
)

// Header is immutable once a Streamer has opened its Input Stream, with the
// sole exception of FrameCount, which starts unknown and is set at most
// once.
type Header struct {
	ChannelCount      int
	SourceSampleRate  int
	FrameCount        *uint64 // nil means unknown
	StreamLengthBytes uint64
	FormatTag         FormatTag
}

// Chunk is a fixed-size decoded segment of source frames, identified by its
// zero-based index. Data is planar: one slice per channel, each of length
// CHUNK_SIZE (the tail beyond the last chunk's valid prefix is zero).
// A Chunk is never mutated after it is built by the loader; it is shared
// across goroutines by pointer.
type Chunk struct {
	ID   uint64
	Data [][]float32
}

// Sample returns the value at the given channel and local frame, or 0 when
// either index is out of range — this is how missing data inside the tail
// of the last chunk, and reads of channels beyond what the source has,
// both resolve to silence.
func (c *Chunk) Sample(channel int, localFrame uint64) float32 {
	if c == nil || channel < 0 || channel >= len(c.Data) {
		return 0
	}
	row := c.Data[channel]
	if localFrame >= uint64(len(row)) {
		return 0
	}
	return row[localFrame]
}

// LoadedChunks is a persistent map id -> *Chunk with structural sharing, so
// publishing a new Model after inserting one chunk is cheap: readers who
// already hold an older Model keep looking at the old tree nodes.
type LoadedChunks struct {
	m *immutable.Map[uint64, *Chunk]
}

func newLoadedChunks() LoadedChunks {
	return LoadedChunks{m: immutable.NewMap[uint64, *Chunk](nil)}
}

// Insert returns a new LoadedChunks with c inserted (or replacing any chunk
// that shares its ID). The receiver is left untouched.
func (l LoadedChunks) Insert(c *Chunk) LoadedChunks {
	return LoadedChunks{m: l.m.Set(c.ID, c)}
}

// Get looks up a chunk by id in O(log n).
func (l LoadedChunks) Get(id uint64) (*Chunk, bool) {
	if l.m == nil {
		return nil, false
	}
	return l.m.Get(id)
}

// Len reports how many chunks are loaded.
func (l LoadedChunks) Len() int {
	if l.m == nil {
		return 0
	}
	return l.m.Len()
}

// Each calls fn once per loaded chunk, in unspecified order.
func (l LoadedChunks) Each(fn func(id uint64, c *Chunk)) {
	if l.m == nil {
		return
	}
	it := l.m.Iterator()
	for !it.Done() {
		id, c, ok := it.Next()
		if !ok {
			break
		}
		fn(id, c)
	}
}

// Target is the currently requested playback start, quantized to a
// multiple of BUFFER_SIZE source frames by whoever calls Seek.
type Target struct {
	SeekPos uint64
}

// Model is the immutable snapshot of decoding state shared across threads.
// EstimatedFrameCount is meaningful only while Header.FrameCount is nil.
type Model struct {
	LoadedChunks        LoadedChunks
	Header              Header
	Target              Target
	EstimatedFrameCount uint64
}

// NewInitial builds the Model a Streamer publishes right after opening its
// Input Stream: no chunks loaded yet, target at the origin.
func NewInitial(header Header) Model {
	return Model{
		LoadedChunks: newLoadedChunks(),
		Header:       header,
	}
}

// EstimatedFrameCount returns the known frame count if the header has one,
// otherwise the model's running estimate.
func EstimatedFrameCount(m Model) uint64 {
	if m.Header.FrameCount != nil {
		return *m.Header.FrameCount
	}
	return m.EstimatedFrameCount
}

// ChunkInfo drives a caller-provided bitmap builder over the loaded chunk
// ids, without the Model committing to any particular bitmap
// representation. reserve is called once with an upper bound on the number
// of ids to store; resize grows the caller's storage to at least n slots;
// set marks id as loaded.
func ChunkInfo(m Model, reserve func(n int), resize func(n int, fill bool), set func(id uint64, v bool)) {
	reserve(m.LoadedChunks.Len() * 2)
	size := uint64(0)
	m.LoadedChunks.Each(func(id uint64, _ *Chunk) {
		if id >= size {
			size = id + 1
			resize(int(size), false)
		}
		set(id, true)
	})
}
