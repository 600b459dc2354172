// Package check holds assertions for states the program can never recover from, a failed check panics.
package check

import "fmt"

// Check panics with assertMsg when shouldBeTrue is false.
func Check(shouldBeTrue bool, assertMsg string) {
	if !shouldBeTrue {
		panic("check failed: " + assertMsg)
	}
}

// Checkf is like [Check] but formats the message according to printf.
func Checkf(shouldBeTrue bool, format string, a ...any) {
	if !shouldBeTrue {
		panic("check failed: " + fmt.Sprintf(format, a...))
	}
}

// NoErr panics when err is not nil, for call sites where an error can only mean a broken invariant.
func NoErr(err error, msg string) {
	if err != nil {
		panic(fmt.Errorf("check failed: %s: %w", msg, err))
	}
}
