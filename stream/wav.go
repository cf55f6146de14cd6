// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/afstream/model"
)

// wavStream is a byte-seekable Input Stream over PCM WAV, built on
// go-audio/wav.Decoder the way the teacher's pack-mate linuxmatters-jivefire
// builds its own WAV readers (wav.NewDecoder + FwdToPCM + PCMBuffer). The
// decoder's own forward-only parsing handles the RIFF/fmt/data chunk walk;
// this type only adds the frame-indexed Seek the Loader needs, computed
// from the byte offset the decoder leaves the reader at once it reaches PCM
// data.
type wavStream struct {
	r             io.ReadSeeker
	dec           *wav.Decoder
	header        model.Header
	dataOffset    int64
	bytesPerFrame int
	bitDepth      int
	pos           uint64
	intBuf        *goaudio.IntBuffer
}

// OpenWAV adapts NewWAV to the Opener signature used by Registry; it
// requires r to already be an io.ReadSeeker.
func OpenWAV(r io.Reader, _ uint64) (InputStream, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, ErrNotSeekable
	}
	return NewWAV(rs)
}

// NewWAV opens a canonical PCM WAV file for random-access decoding.
func NewWAV(r io.ReadSeeker) (InputStream, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWAVFile
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels <= 0 {
		return nil, ErrUnsupportedWAVLayout
	}
	if bitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	dataOffset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	bytesPerFrame := channels * (bitDepth / 8)
	pcmLen := dec.PCMLen()

	h := model.Header{
		ChannelCount:      channels,
		SourceSampleRate:  int(dec.SampleRate),
		StreamLengthBytes: uint64(dataOffset + pcmLen),
		FormatTag:         model.FormatOther,
	}
	if pcmLen > 0 && bytesPerFrame > 0 {
		fc := uint64(pcmLen) / uint64(bytesPerFrame)
		h.FrameCount = &fc
	}

	return &wavStream{
		r:             r,
		dec:           dec,
		header:        h,
		dataOffset:    dataOffset,
		bytesPerFrame: bytesPerFrame,
		bitDepth:      bitDepth,
	}, nil
}

func (s *wavStream) Header() model.Header { return s.header }
func (s *wavStream) CanSeekCheaply() bool { return true }
func (s *wavStream) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *wavStream) Seek(frame uint64) {
	s.pos = frame
	_, _ = s.r.Seek(s.dataOffset+int64(frame)*int64(s.bytesPerFrame), io.SeekStart)
}

func (s *wavStream) ReadFrames(dst []float32) (int, error) {
	channels := s.header.ChannelCount
	framesWanted := len(dst) / channels
	wantSamples := framesWanted * channels

	if s.intBuf == nil || cap(s.intBuf.Data) < wantSamples {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, wantSamples),
			Format: &goaudio.Format{NumChannels: channels, SampleRate: s.header.SourceSampleRate},
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:wantSamples]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	maxVal := float32(int(1) << uint(s.bitDepth-1))
	for i := 0; i < n; i++ {
		dst[i] = float32(s.intBuf.Data[i]) / maxVal
	}

	framesRead := n / channels
	s.pos += uint64(framesRead)

	if n < wantSamples {
		return framesRead, io.EOF
	}
	return framesRead, nil
}

func (s *wavStream) TotalBytesRead() uint64 {
	return uint64(s.dataOffset) + s.pos*uint64(s.bytesPerFrame)
}
