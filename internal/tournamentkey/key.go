// Package tournamentkey maps internal sequential tournament numbers to the
// short public keys used in leaderboard URLs, and back.
package tournamentkey

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Alphabet holds the key digits in value order. The characters avoid
// look-alikes (0/O, 1/I, 5/S) so keys survive being retyped from a phone.
const Alphabet = "23478GLFZHARD"

// MinWidth is the minimum key length; shorter keys are left-padded with the
// zero digit.
const MinWidth = 4

const base = uint64(len(Alphabet))

var (
	ErrEmptyKey    = errors.New("tournament key is empty")
	ErrInvalidChar = errors.New("invalid character in tournament key")
	ErrOverflow    = errors.New("tournament key out of range")
)

// Encode returns the public key for tournament number n.
func Encode(n uint64) string {
	var digits []byte
	for n > 0 {
		digits = append(digits, Alphabet[n%base])
		n /= base
	}
	for len(digits) < MinWidth {
		digits = append(digits, Alphabet[0])
	}

	// Digits were collected least significant first.
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// Decode returns the tournament number for key. Lowercase input is accepted.
func Decode(key string) (uint64, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		return 0, ErrEmptyKey
	}

	var n uint64
	for _, r := range key {
		digit := strings.IndexRune(Alphabet, r)
		if digit < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidChar, r)
		}
		if n > (math.MaxUint64-uint64(digit))/base {
			return 0, fmt.Errorf("%w: %s", ErrOverflow, key)
		}
		n = n*base + uint64(digit)
	}
	return n, nil
}
