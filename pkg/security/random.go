package security

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const tokenCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// rejectAbove is the largest multiple of len(tokenCharset) that fits in a
// byte. Bytes at or above it are discarded so every character is equally
// likely.
const rejectAbove = 256 - 256%len(tokenCharset)

// RandomString returns length characters drawn uniformly from [a-z0-9]
// using crypto/rand.
func RandomString(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, tokenCharset[int(b)%len(tokenCharset)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
