// SPDX-License-Identifier: EPL-2.0

// Package streamtest provides a scriptable fake Input Stream for testing
// the loader and the façade without real audio files, modeled on the
// teacher's internal/audiotest.MockSource.
package streamtest

import (
	"io"

	"github.com/ik5/afstream/model"
)

// MockStream generates deterministic planar data on demand and reports it
// back out interleaved, the way a real decoder would.
type MockStream struct {
	header   model.Header
	waveform func(frame int, channel int) float32

	totalFrames int // 0 means unknown, keep serving data (tests decide when to stop)
	canSeek     bool

	pos            uint64
	totalBytesRead uint64
	seeks          []uint64
}

// New builds a MockStream. totalFrames bounds how much data the stream
// will ever produce; 0 means unbounded: every read is filled in full and
// never returns io.EOF, so a loader driving it never finds an end chunk.
func New(header model.Header, totalFrames int, canSeek bool, waveform func(frame, channel int) float32) *MockStream {
	return &MockStream{header: header, waveform: waveform, totalFrames: totalFrames, canSeek: canSeek}
}

// Sine returns a MockStream whose every channel carries the same repeating
// 8-frame ramp, (frame%8)/8; despite the name, the waveform is not a sine.
func Sine(header model.Header, totalFrames int, canSeek bool) *MockStream {
	return New(header, totalFrames, canSeek, func(frame, channel int) float32 {
		return float32(frame%8) / 8
	})
}

func (m *MockStream) Header() model.Header { return m.header }
func (m *MockStream) CanSeekCheaply() bool { return m.canSeek }
func (m *MockStream) Close() error         { return nil }

// Seeks returns every frame index Seek was called with, in order —
// useful for asserting the loader's next-chunk decision.
func (m *MockStream) Seeks() []uint64 { return m.seeks }

func (m *MockStream) Seek(frame uint64) {
	m.seeks = append(m.seeks, frame)
	m.pos = frame
}

func (m *MockStream) ReadFrames(dst []float32) (int, error) {
	channels := m.header.ChannelCount
	framesWanted := len(dst) / channels

	framesAvailable := framesWanted
	if m.totalFrames > 0 {
		remaining := m.totalFrames - int(m.pos)
		if remaining < 0 {
			remaining = 0
		}
		if framesAvailable > remaining {
			framesAvailable = remaining
		}
	}

	for f := 0; f < framesAvailable; f++ {
		for c := 0; c < channels; c++ {
			dst[f*channels+c] = m.waveform(int(m.pos)+f, c)
		}
	}

	m.pos += uint64(framesAvailable)
	m.totalBytesRead += uint64(framesAvailable * channels * 2)

	if m.totalFrames > 0 && framesAvailable < framesWanted {
		return framesAvailable, io.EOF
	}
	return framesAvailable, nil
}

func (m *MockStream) TotalBytesRead() uint64 { return m.totalBytesRead }
