// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/afstream/model"
)

// vorbisReader is the slice of oggvorbis.Reader this package depends on,
// kept narrow so tests can substitute a fake.
type vorbisReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// vorbisStream is a forward-only Input Stream, same rationale as mp3Stream:
// oggvorbis.Reader decodes forward over an io.Reader with no frame-exact
// random access.
type vorbisStream struct {
	dec     vorbisReader
	counter *countingReader
	header  model.Header
	pos     uint64
	buf     []float32
}

// NewVorbis opens an Ogg Vorbis stream.
func NewVorbis(r io.Reader, streamLengthBytes uint64) (InputStream, error) {
	cr := &countingReader{r: r}
	dec, err := oggvorbis.NewReader(cr)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	h := model.Header{
		ChannelCount:      dec.Channels(),
		SourceSampleRate:  dec.SampleRate(),
		StreamLengthBytes: streamLengthBytes,
		FormatTag:         model.FormatOther,
	}

	return &vorbisStream{dec: dec, counter: cr, header: h}, nil
}

func (s *vorbisStream) Header() model.Header { return s.header }
func (s *vorbisStream) CanSeekCheaply() bool { return false }
func (s *vorbisStream) Close() error         { return nil }

func (s *vorbisStream) Seek(frame uint64) {
	s.pos = frame
}

func (s *vorbisStream) ReadFrames(dst []float32) (int, error) {
	channels := s.header.ChannelCount
	framesWanted := len(dst) / channels

	if cap(s.buf) < framesWanted*channels {
		s.buf = make([]float32, framesWanted*channels)
	}
	buf := s.buf[:framesWanted*channels]

	framesRead, err := s.dec.Read(buf)
	if framesRead > 0 {
		copy(dst[:framesRead*channels], buf[:framesRead*channels])
	}
	s.pos += uint64(framesRead)

	if framesRead == 0 && err == nil {
		return 0, io.EOF
	}
	return framesRead, err
}

func (s *vorbisStream) TotalBytesRead() uint64 {
	return s.counter.n
}
