package store

import (
	"sync"
	"testing"

	"github.com/ik5/afstream/model"
)

func TestStore_ReadReturnsLatestPublished(t *testing.T) {
	t.Parallel()

	s := New(model.NewInitial(model.Header{ChannelCount: 1}))

	got := s.UpdatePublish(func(m model.Model) model.Model {
		m.Target.SeekPos = 64
		return m
	})
	if got.Target.SeekPos != 64 {
		t.Fatalf("UpdatePublish return = %+v, want SeekPos=64", got)
	}

	if read := s.Read(); read.Target.SeekPos != 64 {
		t.Errorf("Read().Target.SeekPos = %d, want 64", read.Target.SeekPos)
	}
}

func TestStore_ReaderKeepsOldSnapshotAcrossUpdates(t *testing.T) {
	t.Parallel()

	s := New(model.NewInitial(model.Header{}))
	old := s.Read()

	s.UpdatePublish(func(m model.Model) model.Model {
		m.Target.SeekPos = 128
		return m
	})

	if old.Target.SeekPos != 0 {
		t.Errorf("previously read snapshot changed under us: SeekPos = %d, want 0", old.Target.SeekPos)
	}
	if s.Read().Target.SeekPos != 128 {
		t.Errorf("Read() after update = %d, want 128", s.Read().Target.SeekPos)
	}
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	t.Parallel()

	s := New(model.NewInitial(model.Header{}))

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			s.UpdatePublish(func(m model.Model) model.Model {
				m.Target.SeekPos++
				return m
			})
		}()
	}
	wg.Wait()

	if got := s.Read().Target.SeekPos; got != writers {
		t.Errorf("Read().Target.SeekPos = %d, want %d (every update must be observed exactly once)", got, writers)
	}
}
