//go:build !linux && !darwin

package platform

// DisableCoreDumps is a no-op where core rlimits do not exist.
func DisableCoreDumps() error { return nil }
