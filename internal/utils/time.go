package utils

import "time"

// WithinWindow reports whether t is no older than window, measured back from now.
// A timestamp exactly on the boundary counts as inside.
func WithinWindow(t, now time.Time, window time.Duration) bool {
	cutoff := now.Add(-window)
	return !t.Before(cutoff)
}
