package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Source fills buffers from a cryptographically secure generator. All nonce,
// key and salt generation in the engine goes through the package-level Rand
// so the backing source is selected exactly once.
type Source interface {
	Fill(b []byte) error
}

type systemSource struct{}

func (systemSource) Fill(b []byte) error {
	_, err := rand.Read(b)
	return err
}

// Rand is the engine-wide random source. crypto/rand is safe for concurrent
// use; any replacement must be too, since nonce generation may run from
// parallel encryption calls.
var Rand Source = systemSource{}

// RandomBytes returns n fresh random bytes from Rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := Rand.Fill(b); err != nil {
		return nil, fmt.Errorf("crypto: random source: %w", err)
	}
	return b, nil
}

// RandomIndex returns a uniform value in [0, n) without modulo bias.
func RandomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidInput
	}
	limit := ^uint32(0) - ^uint32(0)%uint32(n)
	var buf [4]byte
	for {
		if err := Rand.Fill(buf[:]); err != nil {
			return 0, err
		}
		v := binary.BigEndian.Uint32(buf[:])
		if v < limit {
			return int(v % uint32(n)), nil
		}
	}
}
