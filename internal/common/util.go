package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Passwords read from the terminal
// are wiped with it once the request that needed them is built.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// MaskSecret keeps the last four characters of s and replaces the rest
// with asterisks. Short values are fully masked.
func MaskSecret(s string) string {
	const visible = 4
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= visible {
		return "****"
	}
	masked := make([]rune, len(r))
	for i := range r {
		if i < len(r)-visible {
			masked[i] = '*'
		} else {
			masked[i] = r[i]
		}
	}
	return string(masked)
}
