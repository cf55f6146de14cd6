// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"io"
	"sync"
)

// ErrNotSeekable is returned by an Opener that needs an io.ReadSeeker (wav)
// when handed a plain io.Reader.
var ErrNotSeekable = errors.New("stream: reader does not support seeking")

// Opener constructs an InputStream from an opened reader and the total
// byte length of the underlying stream. Formats that need random access
// (wav) type-assert r to io.ReadSeeker themselves and return ErrNotSeekable
// if it doesn't.
type Opener func(r io.Reader, streamLengthBytes uint64) (InputStream, error)

// Registry maps a format key (file extension, content-type, whatever the
// caller's own format detection settles on) to an Opener. Format/path
// detection itself is out of scope for this package — Registry only holds
// the lookup table, the way the teacher's audio.Registry holds decoders.
type Registry struct {
	openers map[string]Opener
	mtx     sync.Mutex
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

// Register associates a format key with an Opener.
func (r *Registry) Register(format string, o Opener) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.openers[format] = o
}

// Get looks up the Opener registered for format.
func (r *Registry) Get(format string) (Opener, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	o, ok := r.openers[format]
	return o, ok
}
