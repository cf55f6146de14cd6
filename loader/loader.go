// SPDX-License-Identifier: EPL-2.0

// Package loader implements the Loader of the spec: it owns the Input
// Stream and a background worker that decides which chunk to fetch next,
// reads it, deinterleaves it, and republishes the Model. The worker is the
// only writer of chunks and frame counts (Streamer.Seek publishes the seek
// target); it is the only thing in this module allowed to block on disk
// I/O.
package loader

import (
	"context"
	"sync"

	"github.com/ik5/afstream/atomics"
	"github.com/ik5/afstream/config"
	"github.com/ik5/afstream/model"
	"github.com/ik5/afstream/store"
	"github.com/ik5/afstream/stream"
)

// Loader owns the Input Stream for the lifetime of the Streamer and runs
// exactly one background worker bound to a cancellation context.
type Loader struct {
	streamIn stream.InputStream
	store    *store.Store
	atoms    *atomics.Shared
	cfg      config.Config

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start spawns the worker immediately and returns a Loader the caller must
// eventually Stop to join the worker before releasing the Input Stream.
func Start(s stream.InputStream, st *store.Store, atoms *atomics.Shared, cfg config.Config) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		streamIn: s,
		store:    st,
		atoms:    atoms,
		cfg:      cfg,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go l.run(ctx)
	return l
}

// Stop requests the worker to stop and blocks until it has exited. Safe to
// call more than once.
func (l *Loader) Stop() {
	l.once.Do(func() {
		l.cancel()
	})
	<-l.done
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)

	initial := l.store.Read()
	channels := initial.Header.ChannelCount
	if channels <= 0 {
		channels = 1
	}

	currentChunkIdx := uint64(0)
	var endChunk *uint64
	totalFramesRead := uint64(0)
	interleaved := make([]float32, l.cfg.ChunkSize*channels)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l.atoms.SetRequestPlaybackPos(true)
		l.streamIn.Seek(currentChunkIdx * uint64(l.cfg.ChunkSize))

		framesRead, err := l.streamIn.ReadFrames(interleaved)
		totalFramesRead += uint64(framesRead)

		justFoundEnd := false
		if framesRead < l.cfg.ChunkSize {
			idx := currentChunkIdx
			endChunk = &idx
			justFoundEnd = true
		}
		// Any stream error is treated as end of stream for this spec;
		// err carries no further meaning once we've reached here.
		_ = err

		chunk := deinterleave(currentChunkIdx, interleaved, framesRead, channels, l.cfg.ChunkSize)

		newModel := l.store.UpdatePublish(func(m model.Model) model.Model {
			m.LoadedChunks = m.LoadedChunks.Insert(chunk)
			if justFoundEnd && m.Header.FrameCount == nil {
				fc := endFrameCount(*endChunk, uint64(framesRead), l.cfg.ChunkSize)
				m.Header.FrameCount = &fc
			}
			if m.Header.FrameCount == nil {
				m.EstimatedFrameCount = estimateFrameCount(totalFramesRead, l.streamIn.TotalBytesRead(), m.Header.StreamLengthBytes)
			}
			return m
		})

		next := l.nextChunk(newModel, currentChunkIdx, endChunk)
		if next == nil {
			return
		}
		currentChunkIdx = *next

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// nextChunk implements the §4.2 decision procedure. Forward-only
// containers (mp3, or anything that reports CanSeekCheaply() == false)
// always load the chunk right after the one just finished; everything
// else loads by distance from the audio thread's last reported playback
// position.
func (l *Loader) nextChunk(m model.Model, justLoaded uint64, endChunk *uint64) *uint64 {
	if l.streamIn.CanSeekCheaply() {
		return nextChunkRandom(m, l.atoms, l.cfg, endChunk)
	}
	return nextChunkForward(justLoaded, endChunk)
}

func nextChunkForward(justLoaded uint64, endChunk *uint64) *uint64 {
	if endChunk != nil && justLoaded == *endChunk {
		return nil
	}
	n := justLoaded + 1
	return &n
}

func nextChunkRandom(m model.Model, atoms *atomics.Shared, cfg config.Config, endChunk *uint64) *uint64 {
	pos := atoms.ReportedPlaybackPos()
	playbackChunk := uint64(pos) / uint64(cfg.ChunkSize)

	check := playbackChunk
	for {
		if _, ok := m.LoadedChunks.Get(check); !ok {
			found := check
			return &found
		}
		check++
		if endChunk != nil && check == *endChunk {
			check = 0
			for check < playbackChunk {
				if _, ok := m.LoadedChunks.Get(check); !ok {
					found := check
					return &found
				}
				check++
			}
			return nil
		}
	}
}

func deinterleave(id uint64, interleaved []float32, framesRead int, channels int, chunkSize int) *model.Chunk {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, chunkSize)
	}
	for i := 0; i < framesRead; i++ {
		for c := 0; c < channels; c++ {
			data[c][i] = interleaved[i*channels+c]
		}
	}
	return &model.Chunk{ID: id, Data: data}
}

func endFrameCount(endChunk uint64, framesInEndChunk uint64, chunkSize int) uint64 {
	return framesInEndChunk + endChunk*uint64(chunkSize)
}

func estimateFrameCount(totalFramesRead, totalBytesRead, streamLengthBytes uint64) uint64 {
	if streamLengthBytes == 0 || totalBytesRead == 0 {
		return totalFramesRead
	}
	byteProgress := float64(totalBytesRead) / float64(streamLengthBytes)
	if byteProgress <= 0 {
		return totalFramesRead
	}
	return uint64(float64(totalFramesRead) / byteProgress)
}
