// Package secmem provides guarded containers for key material. Buffers are
// allocated through memguard (mlocked pages, guard canaries) and released by
// overwriting with fresh random bytes before the zeroing destroy, so a wiped
// buffer leaves neither the secret nor a recognizable all-zero region behind.
package secmem

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

var ErrClearedAccess = errors.New("secmem: buffer already wiped")

// SecretBuffer wraps a fixed-length guarded allocation with a single
// release path. All methods are safe for concurrent use.
type SecretBuffer struct {
	mu  sync.Mutex
	buf *memguard.LockedBuffer
}

// New allocates a zeroed guarded buffer of n bytes.
func New(n int) *SecretBuffer {
	return &SecretBuffer{buf: memguard.NewBuffer(n)}
}

// FromBytes copies b into a guarded allocation and wipes the source slice.
func FromBytes(b []byte) *SecretBuffer {
	return &SecretBuffer{buf: memguard.NewBufferFromBytes(b)}
}

// Len reports the buffer size; zero once wiped.
func (s *SecretBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil || !s.buf.IsAlive() {
		return 0
	}
	return s.buf.Size()
}

// Bytes returns the live contents. The slice aliases the guarded region:
// callers must not retain it across a Wipe.
func (s *SecretBuffer) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil || !s.buf.IsAlive() {
		return nil, ErrClearedAccess
	}
	return s.buf.Bytes(), nil
}

// Duplicate returns an independent guarded copy.
func (s *SecretBuffer) Duplicate() (*SecretBuffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil || !s.buf.IsAlive() {
		return nil, ErrClearedAccess
	}
	cp := make([]byte, s.buf.Size())
	copy(cp, s.buf.Bytes())
	return FromBytes(cp), nil
}

// Wipe scrambles the contents with random bytes and then destroys the
// allocation (memguard zeroes it on destroy). Idempotent.
func (s *SecretBuffer) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil || !s.buf.IsAlive() {
		return
	}
	s.buf.Melt()
	memguard.ScrambleBytes(s.buf.Bytes())
	s.buf.Destroy()
}

// WipeBytes scrambles and zeroes an unguarded slice in place. Used for
// transient key material that never lived in a SecretBuffer.
func WipeBytes(b []byte) {
	memguard.ScrambleBytes(b)
	memguard.WipeBytes(b)
}
