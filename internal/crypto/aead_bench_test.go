package crypto

import (
	"crypto/rand"
	"testing"
)

func benchSeal(b *testing.B, size int) {
	key := make([]byte, KeySize)
	rand.Read(key)
	pt := make([]byte, size)
	rand.Read(pt)
	b.SetBytes(int64(size))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Seal(key, pt, nil); err != nil {
			b.Fatalf("seal failed: %v", err)
		}
	}
}

func benchOpen(b *testing.B, size int) {
	key := make([]byte, KeySize)
	rand.Read(key)
	pt := make([]byte, size)
	rand.Read(pt)
	env, err := Seal(key, pt, nil)
	if err != nil {
		b.Fatalf("seal failed: %v", err)
	}
	b.SetBytes(int64(size))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Open(env, key, nil); err != nil {
			b.Fatalf("open failed: %v", err)
		}
	}
}

func BenchmarkSeal1KB(b *testing.B)  { benchSeal(b, 1024) }
func BenchmarkOpen1KB(b *testing.B)  { benchOpen(b, 1024) }
func BenchmarkSeal16KB(b *testing.B) { benchSeal(b, 16*1024) }
func BenchmarkOpen16KB(b *testing.B) { benchOpen(b, 16*1024) }
