// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/afstream/model"
)

// aiffReader is the slice of aiff.Decoder this package depends on.
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// aiffStream is a forward-only Input Stream: go-audio/aiff streams PCM
// forward through PCMBuffer with no frame-indexed random access, so this
// mirrors mp3Stream/vorbisStream rather than wavStream.
type aiffStream struct {
	dec      aiffReader
	counter  *countingReader
	header   model.Header
	bitDepth int
	pos      uint64
	intBuf   *goaudio.IntBuffer
}

// NewAIFF opens a 16-bit PCM AIFF stream.
func NewAIFF(r io.Reader, streamLengthBytes uint64) (InputStream, error) {
	cr := &countingReader{r: r}

	// go-audio/aiff requires an io.ReadSeeker; this stream is forward-only
	// anyway (CanSeekCheaply reports false), so buffer fully up front.
	data, err := io.ReadAll(cr)
	if err != nil {
		return nil, fmt.Errorf("reading aiff data: %w", err)
	}
	rs := &memReadSeeker{data: data}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAIFFFile
	}
	dec.ReadInfo()

	if dec.BitDepth != 16 {
		return nil, ErrOnlyAIFFPCM16bit
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAIFFLayout
	}

	h := model.Header{
		ChannelCount:      format.NumChannels,
		SourceSampleRate:  format.SampleRate,
		StreamLengthBytes: streamLengthBytes,
		FormatTag:         model.FormatOther,
	}

	return &aiffStream{dec: dec, counter: cr, header: h, bitDepth: int(dec.BitDepth)}, nil
}

func (s *aiffStream) Header() model.Header { return s.header }
func (s *aiffStream) CanSeekCheaply() bool { return false }
func (s *aiffStream) Close() error         { return nil }

func (s *aiffStream) Seek(frame uint64) {
	s.pos = frame
}

func (s *aiffStream) ReadFrames(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	const maxVal16 float32 = 32768.0
	for i := 0; i < n; i++ {
		dst[i] = float32(s.intBuf.Data[i]) / maxVal16
	}

	framesRead := n / s.header.ChannelCount
	s.pos += uint64(framesRead)

	if n < len(dst) && err == nil {
		return framesRead, io.EOF
	}
	return framesRead, err
}

func (s *aiffStream) TotalBytesRead() uint64 {
	return s.counter.n
}

// memReadSeeker implements io.ReadSeeker over an in-memory buffer, for
// readers go-audio/aiff is handed that do not already support seeking.
type memReadSeeker struct {
	data   []byte
	offset int64
}

func (rs *memReadSeeker) Read(p []byte) (int, error) {
	if rs.offset >= int64(len(rs.data)) {
		return 0, io.EOF
	}
	n := copy(p, rs.data[rs.offset:])
	rs.offset += int64(n)
	return n, nil
}

func (rs *memReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = rs.offset + offset
	case io.SeekEnd:
		newOffset = int64(len(rs.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if newOffset < 0 {
		return 0, fmt.Errorf("negative position")
	}
	rs.offset = newOffset
	return newOffset, nil
}
