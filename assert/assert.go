// Package assert provides the small set of test helpers used across the
// repo's _test files.
package assert

import "testing"

// Equal fails the test when expected != actual.
func Equal[T comparable](t *testing.T, expected, actual T, name string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}

// True fails the test when cond is false.
func True(t *testing.T, cond bool, name string) {
	t.Helper()
	if !cond {
		t.Errorf("%s: expected true", name)
	}
}

// False fails the test when cond is true.
func False(t *testing.T, cond bool, name string) {
	t.Helper()
	if cond {
		t.Errorf("%s: expected false", name)
	}
}

// NoError fails the test when err is non-nil.
func NoError(t *testing.T, err error, name string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", name, err)
	}
}
