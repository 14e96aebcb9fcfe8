package claimcode

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// Length is the fixed length of a claim code in hex characters.
const Length = 16

var ErrMalformed = errors.New("claim code must be 16 hex characters")

// Generate draws a fresh claim code from a cryptographically strong random
// source: 8 random bytes rendered as 16 uppercase hex characters.
func Generate() (string, error) {
	var buf [Length / 2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("claim code generation: %w", err)
	}

	out := make([]byte, Length)
	hex.Encode(out, buf[:])
	for i, b := range out {
		if b >= 'a' && b <= 'f' {
			out[i] = b - ('a' - 'A')
		}
	}
	return string(out), nil
}

// Normalize upper-cases a user-supplied code and validates its shape.
func Normalize(code string) (string, error) {
	if len(code) != Length {
		return "", ErrMalformed
	}

	out := make([]byte, Length)
	for i := 0; i < Length; i++ {
		c := code[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'F':
			out[i] = c
		case c >= 'a' && c <= 'f':
			out[i] = c - ('a' - 'A')
		default:
			return "", ErrMalformed
		}
	}
	return string(out), nil
}
