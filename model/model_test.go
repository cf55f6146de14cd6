package model

import "testing"

func TestLoadedChunks_InsertIsStructural(t *testing.T) {
	t.Parallel()

	before := newLoadedChunks()
	after := before.Insert(&Chunk{ID: 3, Data: [][]float32{{1, 2, 3}}})

	if before.Len() != 0 {
		t.Errorf("before.Len() = %d, want 0 (insert must not mutate the receiver)", before.Len())
	}
	if after.Len() != 1 {
		t.Errorf("after.Len() = %d, want 1", after.Len())
	}

	c, ok := after.Get(3)
	if !ok || c.ID != 3 {
		t.Fatalf("Get(3) = %v, %v", c, ok)
	}
	if _, ok := before.Get(3); ok {
		t.Errorf("before.Get(3) found a chunk; old snapshot must stay untouched")
	}
}

func TestChunk_SampleOutOfRangeIsSilence(t *testing.T) {
	t.Parallel()

	c := &Chunk{ID: 0, Data: [][]float32{{1, 2}, {3, 4}}}

	if got := c.Sample(0, 0); got != 1 {
		t.Errorf("Sample(0,0) = %v, want 1", got)
	}
	if got := c.Sample(1, 10); got != 0 {
		t.Errorf("Sample(1,10) = %v, want 0 (out of range)", got)
	}
	if got := c.Sample(5, 0); got != 0 {
		t.Errorf("Sample(5,0) = %v, want 0 (channel out of range)", got)
	}
	var nilChunk *Chunk
	if got := nilChunk.Sample(0, 0); got != 0 {
		t.Errorf("nil chunk Sample = %v, want 0", got)
	}
}

func TestEstimatedFrameCount(t *testing.T) {
	t.Parallel()

	m := NewInitial(Header{})
	m.EstimatedFrameCount = 42
	if got := EstimatedFrameCount(m); got != 42 {
		t.Errorf("EstimatedFrameCount() = %d, want 42 (header frame count unknown)", got)
	}

	known := uint64(100)
	m.Header.FrameCount = &known
	if got := EstimatedFrameCount(m); got != 100 {
		t.Errorf("EstimatedFrameCount() = %d, want 100 (header frame count known)", got)
	}
}

func TestChunkInfo(t *testing.T) {
	t.Parallel()

	m := NewInitial(Header{})
	m.LoadedChunks = m.LoadedChunks.Insert(&Chunk{ID: 0})
	m.LoadedChunks = m.LoadedChunks.Insert(&Chunk{ID: 2})

	var reserved int
	var bits []bool
	ChunkInfo(m,
		func(n int) { reserved = n },
		func(n int, fill bool) {
			for len(bits) < n {
				bits = append(bits, fill)
			}
		},
		func(id uint64, v bool) {
			bits[id] = v
		},
	)

	if reserved != 4 {
		t.Errorf("reserve(n) = %d, want 4 (2x loaded count)", reserved)
	}
	if len(bits) != 3 {
		t.Fatalf("len(bits) = %d, want 3 (max id + 1)", len(bits))
	}
	if !bits[0] || bits[1] || !bits[2] {
		t.Errorf("bits = %v, want [true false true]", bits)
	}
}
