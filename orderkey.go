// Package orderkey assigns sortable string positions to the items of a
// user-reorderable list.
//
// An order key is a non-empty string of printable ASCII (' ' through '~')
// that does not end in a space. Items are displayed in ascending byte-wise
// order of their keys, so moving an item only requires computing one new key
// for it: no other item is renumbered and no central counter is involved.
//
// Keys are always long enough to be refined further, so between any two
// distinct valid keys another valid key can be constructed.
//
// # Quick Start
//
//	first := orderkey.FirstPosition                   // "!"
//	next := orderkey.After(first)                     // "\""
//	mid := orderkey.Between(first, next)              // "!O"
//	head := orderkey.Before(first)                    // " ~"
//
// The four functions are pure and safe for concurrent use. The generators
// panic with an error wrapping [ErrInvalidArgument] when handed malformed or
// out-of-order keys; use [GenBetween] or [Parse] when keys come from storage
// or another untrusted source.
//
// # Concurrency
//
// Two writers computing a key between the same neighbours get the same key.
// The engine does not detect this; see [Place] for a retry loop built on a
// uniqueness constraint.
package orderkey

import (
	"errors"
	"fmt"

	"github.com/lupppig/orderkey/internal/alphabet"
)

// FirstPosition is the key given to the first item of an empty list.
const FirstPosition = "!"

var (
	// ErrInvalidArgument is the fault raised when a generator is called with
	// arguments that violate its preconditions. It indicates a bug in the
	// caller and is delivered by panic.
	ErrInvalidArgument = errors.New("orderkey: invalid argument")

	// ErrInvalidKey is returned when a string is not a valid order key.
	ErrInvalidKey = errors.New("orderkey: invalid key")

	// ErrOutOfOrder is returned when a lower bound does not sort strictly
	// before its upper bound.
	ErrOutOfOrder = fmt.Errorf("%w: bounds out of order", ErrInvalidArgument)
)

// IsValid reports whether pos is a valid order key: non-empty, made only of
// characters in [' ', '~'], and not ending in ' '.
func IsValid(pos string) bool {
	if len(pos) == 0 {
		return false
	}
	if pos[len(pos)-1] == alphabet.Min() {
		return false
	}
	return alphabet.Validate(pos) == nil
}

// Before returns a key that sorts strictly before pos.
//
// The last character above '!' is decremented and everything after it is
// dropped. If there is no such character, the last character is replaced
// with " ~", which still sorts before pos and leaves room on both sides.
//
// Before panics if pos is not a valid key.
func Before(pos string) string {
	mustBeValid("before", pos)

	var result string
	for i := len(pos) - 1; i >= 0; i-- {
		if pos[i] > alphabet.Floor() {
			result = pos[:i] + string(pos[i]-1)
			break
		}
	}
	if result == "" {
		result = pos[:len(pos)-1] + string([]byte{alphabet.Min(), alphabet.Max()})
	}

	ensure("before", result, "", pos)
	return result
}

// After returns a key that sorts strictly after pos.
//
// The last character below '~' is incremented and everything after it is
// dropped. A key made only of '~' is extended with '!'.
//
// After panics if pos is not a valid key.
func After(pos string) string {
	mustBeValid("after", pos)

	var result string
	for i := len(pos) - 1; i >= 0; i-- {
		if pos[i] < alphabet.Max() {
			result = pos[:i] + string(pos[i]+1)
			break
		}
	}
	if result == "" {
		result = pos + string(alphabet.Floor())
	}

	ensure("after", result, pos, "")
	return result
}

// Between returns a key that sorts strictly between firstPos and secondPos.
//
// The result is built one character at a time, treating firstPos as padded
// with ' ' on the right. Shared characters are copied. The first position
// with room takes the midpoint of the two bounds. Where the bounds are
// adjacent, the lower character is kept and secondPos no longer constrains
// the rest of the key, so later positions are bounded by '~' instead.
//
// Between panics if either key is invalid or firstPos >= secondPos.
func Between(firstPos, secondPos string) string {
	mustBeValid("between", firstPos)
	mustBeValid("between", secondPos)
	if firstPos >= secondPos {
		panic(fmt.Errorf("%w: between(%q, %q)", ErrOutOfOrder, firstPos, secondPos))
	}

	n := max(len(firstPos), len(secondPos))
	buf := make([]byte, 0, n+1)
	exhausted, complete := false, false

	for i := 0; i < n && !complete; i++ {
		lower := alphabet.Min()
		if i < len(firstPos) {
			lower = firstPos[i]
		}
		upper := alphabet.Max()
		if !exhausted && i < len(secondPos) {
			upper = secondPos[i]
		}

		switch {
		case lower == upper:
			buf = append(buf, lower)
		case upper-lower > 1:
			buf = append(buf, midpoint(lower, upper))
			complete = true
		default:
			buf = append(buf, lower)
			exhausted = true
		}
	}
	if !complete {
		buf = append(buf, alphabet.Mid())
	}

	result := string(buf)
	ensure("between", result, firstPos, secondPos)
	return result
}

func midpoint(lower, upper byte) byte {
	return byte((int(lower) + int(upper)) / 2)
}

func mustBeValid(op, pos string) {
	if !IsValid(pos) {
		panic(fmt.Errorf("%w: %s(%q): %w", ErrInvalidArgument, op, pos, ErrInvalidKey))
	}
}

// ensure checks a generated key against its bounds. An empty bound is open.
func ensure(op, result, lower, upper string) {
	if !IsValid(result) || (lower != "" && result <= lower) || (upper != "" && result >= upper) {
		panic(fmt.Sprintf("orderkey: %s produced %q outside (%q, %q)", op, result, lower, upper))
	}
}
