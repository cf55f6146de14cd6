// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/afstream/model"
)

// mp3Stream is a forward-only Input Stream: go-mp3 cannot seek cheaply or
// exactly, so CanSeekCheaply reports false and the Loader is expected to
// only ever request the next contiguous chunk, in which case Seek is a
// formality — the decoder is already positioned there.
type mp3Stream struct {
	dec     *gomp3.Decoder
	counter *countingReader
	header  model.Header
	pos     uint64
	buf     []byte
}

// NewMP3 opens an MP3 stream. streamLengthBytes is the compressed file
// size, used only for the estimated-frame-count byte-progress heuristic.
func NewMP3(r io.Reader, streamLengthBytes uint64) (InputStream, error) {
	cr := &countingReader{r: r}
	dec, err := gomp3.NewDecoder(cr)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	h := model.Header{
		ChannelCount:      2,
		SourceSampleRate:  dec.SampleRate(),
		StreamLengthBytes: streamLengthBytes,
		FormatTag:         model.FormatMP3,
	}

	return &mp3Stream{dec: dec, counter: cr, header: h}, nil
}

func (s *mp3Stream) Header() model.Header { return s.header }
func (s *mp3Stream) CanSeekCheaply() bool { return false }
func (s *mp3Stream) Close() error         { return nil }

func (s *mp3Stream) Seek(frame uint64) {
	s.pos = frame
}

func (s *mp3Stream) ReadFrames(dst []float32) (int, error) {
	channels := s.header.ChannelCount
	framesWanted := len(dst) / channels
	bytesNeeded := framesWanted * channels * 2

	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	buf := s.buf[:bytesNeeded]

	n, err := io.ReadFull(s.dec, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	framesRead := samples / channels
	s.pos += uint64(framesRead)

	if framesRead == 0 && err == io.EOF {
		return 0, io.EOF
	}
	return framesRead, nil
}

func (s *mp3Stream) TotalBytesRead() uint64 {
	return s.counter.n
}
