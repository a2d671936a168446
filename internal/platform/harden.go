//go:build linux || darwin

// Package platform applies process-level hardening so derived keys cannot
// leak through operating-system side channels.
package platform

import "golang.org/x/sys/unix"

// DisableCoreDumps zeroes the core-file rlimit: a crash must never write
// key material to disk.
func DisableCoreDumps() error {
	var rlim unix.Rlimit
	rlim.Cur = 0
	rlim.Max = 0
	return unix.Setrlimit(unix.RLIMIT_CORE, &rlim)
}
