// Package alphabet defines the printable-ASCII character set that order keys
// are written in.
//
// The alphabet is the contiguous byte range ' ' (32) through '~' (126). Since
// the range is contiguous, byte arithmetic on key characters is alphabet
// arithmetic and plain string comparison is key comparison.
package alphabet

import "fmt"

const (
	minChar   = ' '
	maxChar   = '~'
	floorChar = minChar + 1
	midChar   = (minChar + maxChar) / 2
)

// Size is the number of characters in the alphabet.
const Size = maxChar - minChar + 1

// Min returns the minimal character (' '). A key may never end on it.
func Min() byte {
	return minChar
}

// Max returns the maximal character ('~').
func Max() byte {
	return maxChar
}

// Floor returns the smallest character a key may end on ('!').
func Floor() byte {
	return floorChar
}

// Mid returns the character halfway between Min and Max ('O').
func Mid() byte {
	return midChar
}

// IsValid reports whether c is in the alphabet.
func IsValid(c byte) bool {
	return c >= minChar && c <= maxChar
}

// Validate checks that every byte in s is in the alphabet.
// It returns an error referencing the first invalid byte found.
func Validate(s string) error {
	for i := 0; i < len(s); i++ {
		if !IsValid(s[i]) {
			return fmt.Errorf("alphabet: invalid character %q at position %d", s[i], i)
		}
	}
	return nil
}
