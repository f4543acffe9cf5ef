// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/banshee-data/csd.report/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// DecimalTolerance is the absolute bound 1.5·10^−decimal used by
// AlmostEqual.
func DecimalTolerance(decimal int) float64 {
	return 1.5 * math.Pow10(-decimal)
}

// AlmostEqual reports the indices where |got−want| is not below
// DecimalTolerance(decimal). A length mismatch is reported as an error.
func AlmostEqual(got, want []float64, decimal int) ([]int, error) {
	if len(got) != len(want) {
		return nil, fmt.Errorf("length %d, want %d", len(got), len(want))
	}
	tol := DecimalTolerance(decimal)
	var bad []int
	for i := range got {
		if !(math.Abs(got[i]-want[i]) < tol) {
			bad = append(bad, i)
		}
	}
	return bad, nil
}

// AssertAlmostEqual fails the test unless got and want agree to decimal
// places, printing a cmp diff of the two arrays.
func AssertAlmostEqual(t testing.TB, got, want []float64, decimal int) {
	t.Helper()
	bad, err := AlmostEqual(got, want, decimal)
	if err != nil {
		t.Fatalf("AssertAlmostEqual: %v", err)
	}
	if len(bad) > 0 {
		diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, DecimalTolerance(decimal)))
		t.Errorf("arrays differ at indices %v to %d decimals (-want +got):\n%s", bad, decimal, diff)
	}
}

// CaptureLogs redirects monitoring.Logf for the duration of the test and
// returns a function yielding the formatted lines logged so far.
func CaptureLogs(t testing.TB) func() []string {
	t.Helper()
	var (
		mu    sync.Mutex
		lines []string
	)
	original := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.Logf = original })
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), lines...)
	}
}
