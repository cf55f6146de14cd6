package loader

import (
	"testing"
	"time"

	"github.com/ik5/afstream/atomics"
	"github.com/ik5/afstream/config"
	"github.com/ik5/afstream/internal/streamtest"
	"github.com/ik5/afstream/model"
	"github.com/ik5/afstream/store"
)

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestLoader_ForwardOnlyLoadsSequentially(t *testing.T) {
	t.Parallel()

	header := model.Header{ChannelCount: 1, SourceSampleRate: 8000, FormatTag: model.FormatMP3}
	cfg := config.Config{ChunkSize: 4, BufferSize: 2}
	s := streamtest.Sine(header, 10, false) // forward-only, 10 frames total -> chunks 0,1,2(short)

	st := store.New(model.NewInitial(header))
	atoms := &atomics.Shared{}

	l := Start(s, st, atoms, cfg)
	waitUntil(t, time.Second, func() bool {
		return st.Read().LoadedChunks.Len() == 3
	})
	l.Stop()

	m := st.Read()
	if m.LoadedChunks.Len() != 3 {
		t.Fatalf("LoadedChunks.Len() = %d, want 3", m.LoadedChunks.Len())
	}
	if m.Header.FrameCount == nil || *m.Header.FrameCount != 10 {
		t.Fatalf("FrameCount = %v, want 10", m.Header.FrameCount)
	}

	seeks := s.Seeks()
	want := []uint64{0, 4, 8}
	if len(seeks) != len(want) {
		t.Fatalf("Seeks() = %v, want %v", seeks, want)
	}
	for i := range want {
		if seeks[i] != want[i] {
			t.Errorf("Seeks()[%d] = %d, want %d", i, seeks[i], want[i])
		}
	}
}

func TestLoader_StopIsIdempotentAndJoins(t *testing.T) {
	t.Parallel()

	header := model.Header{ChannelCount: 1, SourceSampleRate: 8000, FormatTag: model.FormatMP3}
	cfg := config.Config{ChunkSize: 4, BufferSize: 2}
	s := streamtest.Sine(header, 1000000, false)

	st := store.New(model.NewInitial(header))
	atoms := &atomics.Shared{}

	l := Start(s, st, atoms, cfg)
	waitUntil(t, time.Second, func() bool {
		return st.Read().LoadedChunks.Len() > 0
	})
	l.Stop()
	l.Stop() // must not block or panic
}

func TestNextChunkForward(t *testing.T) {
	t.Parallel()

	if got := nextChunkForward(3, nil); got == nil || *got != 4 {
		t.Errorf("nextChunkForward(3, nil) = %v, want 4", got)
	}
	end := uint64(3)
	if got := nextChunkForward(3, &end); got != nil {
		t.Errorf("nextChunkForward(3, &3) = %v, want nil", got)
	}
}

func modelWithChunks(ids ...uint64) model.Model {
	m := model.NewInitial(model.Header{ChannelCount: 1})
	for _, id := range ids {
		m.LoadedChunks = m.LoadedChunks.Insert(&model.Chunk{ID: id, Data: [][]float32{{0}}})
	}
	return m
}

func TestNextChunkRandom(t *testing.T) {
	t.Parallel()

	cfg := config.Config{ChunkSize: 10, BufferSize: 2}

	t.Run("skips already loaded chunks ahead of the playback position", func(t *testing.T) {
		m := modelWithChunks(2, 3) // playback chunk 2; 2 and 3 loaded, 4 free
		atoms := &atomics.Shared{}
		atoms.SetReportedPlaybackPos(25) // chunk 25/10 = 2

		got := nextChunkRandom(m, atoms, cfg, nil)
		if got == nil || *got != 4 {
			t.Fatalf("nextChunkRandom() = %v, want 4", got)
		}
	})

	t.Run("returns the playback chunk itself when it is not loaded", func(t *testing.T) {
		m := modelWithChunks(5, 6)
		atoms := &atomics.Shared{}
		atoms.SetReportedPlaybackPos(25) // chunk 2, unloaded

		got := nextChunkRandom(m, atoms, cfg, nil)
		if got == nil || *got != 2 {
			t.Fatalf("nextChunkRandom() = %v, want 2", got)
		}
	})

	t.Run("wraps to 0 and scans up to the playback position once it reaches end chunk", func(t *testing.T) {
		m := modelWithChunks(2, 3, 4) // 2..4 loaded, end chunk is 4, 0 and 1 still free
		atoms := &atomics.Shared{}
		atoms.SetReportedPlaybackPos(25) // chunk 2
		end := uint64(4)

		got := nextChunkRandom(m, atoms, cfg, &end)
		if got == nil || *got != 0 {
			t.Fatalf("nextChunkRandom() = %v, want 0", got)
		}
	})

	t.Run("returns nil once every chunk from playback position around to end is loaded", func(t *testing.T) {
		m := modelWithChunks(0, 1, 2, 3, 4)
		atoms := &atomics.Shared{}
		atoms.SetReportedPlaybackPos(25) // chunk 2
		end := uint64(4)

		got := nextChunkRandom(m, atoms, cfg, &end)
		if got != nil {
			t.Fatalf("nextChunkRandom() = %v, want nil", got)
		}
	})
}

func TestDeinterleave(t *testing.T) {
	t.Parallel()

	interleaved := []float32{1, 10, 2, 20, 3, 20}
	c := deinterleave(5, interleaved, 3, 2, 4)
	if c.ID != 5 {
		t.Errorf("ID = %d, want 5", c.ID)
	}
	if len(c.Data) != 2 || len(c.Data[0]) != 4 {
		t.Fatalf("Data shape = %v", c.Data)
	}
	if c.Data[0][0] != 1 || c.Data[1][0] != 10 {
		t.Errorf("Data[0][0..1] = %v, %v, want 1, 10", c.Data[0][0], c.Data[1][0])
	}
	if c.Data[0][3] != 0 {
		t.Errorf("Data[0][3] = %v, want 0 (unwritten tail)", c.Data[0][3])
	}
}

func TestEndFrameCount(t *testing.T) {
	t.Parallel()

	if got := endFrameCount(2, 3, 4); got != 11 {
		t.Errorf("endFrameCount(2, 3, 4) = %d, want 11", got)
	}
}
