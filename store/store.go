// SPDX-License-Identifier: EPL-2.0

// Package store implements the single-writer, many-reader snapshot
// register for a model.Model: a read-copy-update register over the
// persistent structures in package model.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/afstream/model"
)

// Store holds one Model at a time. Read is lock-free and never blocks a
// concurrent UpdatePublish; UpdatePublish serializes concurrent writers
// with a mutex but never blocks a concurrent Read.
type Store struct {
	mu  sync.Mutex // serializes writers only
	cur atomic.Pointer[model.Model]
}

// New creates a Store already holding initial.
func New(initial model.Model) *Store {
	s := &Store{}
	s.cur.Store(&initial)
	return s
}

// Read returns a cheap snapshot. Safe from any thread, including the
// realtime audio thread: it never allocates, never blocks, and never
// contends with UpdatePublish.
func (s *Store) Read() model.Model {
	return *s.cur.Load()
}

// UpdatePublish atomically replaces the stored Model with f(current) and
// returns the new value. Concurrent callers are serialized against each
// other; a concurrent Read always observes either the pre- or
// post-update snapshot, never a torn composite.
func (s *Store) UpdatePublish(f func(model.Model) model.Model) model.Model {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := f(*s.cur.Load())
	s.cur.Store(&next)
	return next
}
