// SPDX-License-Identifier: EPL-2.0

// Package stream supplies the Input Stream collaborator the spec treats as
// an external dependency (§2.1, §6): something that can hand the loader a
// Header up front and then, on demand, seek to a frame and decode frames
// into an interleaved buffer. The four concrete streams here (wav, aiff,
// mp3, vorbis) are adapted from the teacher's format decoders.
package stream

import (
	"io"

	"github.com/ik5/afstream/model"
)

// InputStream is what the Loader drives. CanSeekCheaply reports whether
// random access is inexpensive and exact — false for containers like mp3
// where frame-accurate seeking requires re-decoding from the start; the
// Loader uses this instead of comparing a format string against a literal,
// per the spec's own suggestion (§9).
type InputStream interface {
	Header() model.Header
	Seek(frame uint64)
	ReadFrames(dst []float32) (framesRead int, err error)
	TotalBytesRead() uint64
	CanSeekCheaply() bool
	Close() error
}

// countingReader wraps a compressed-stream reader so formats that cannot
// report their own read progress (mp3, vorbis) can still feed the loader's
// estimate-from-byte-progress calculation (§4.2 step 6).
type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}
