// Package joincode generates workspace join codes.
//
// A join code is a short shared secret granting member access to a
// workspace. The 36^6 space is not meant to resist online brute force on
// its own; codes are regenerable by admins, which invalidates the old
// code immediately.
package joincode

import (
	"crypto/rand"
)

// Alphabet is the join code character set: lowercase alphanumerics.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Length is the fixed join code length.
const Length = 6

// maxUnbiased is the largest multiple of len(Alphabet) that fits in a
// byte. Bytes at or past it are rejected so no character is more
// likely than another.
const maxUnbiased = byte(256 / len(Alphabet) * len(Alphabet))

// New returns a fresh random join code.
// Panics if the system's cryptographic random number generator fails.
func New() string {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for len(out) < Length {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand.Read failed: " + err.Error())
		}
		for _, v := range buf {
			if v >= maxUnbiased || len(out) == Length {
				continue
			}
			out = append(out, Alphabet[int(v)%len(Alphabet)])
		}
	}
	return string(out)
}

// Valid reports whether s has the length and alphabet of a join code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
