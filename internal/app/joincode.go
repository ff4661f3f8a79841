package app

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet skips 0/O/1/I so codes survive being read aloud or typed
// from a projector.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	joinCodeLength  = 6
	codeGenAttempts = 10
	sessionIDLength = 12
	sessionIDPrefix = "sess-"
	idAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateJoinCode produces a short human-enterable code. Collision freedom
// against active sessions is the caller's job (retry on ErrCodeTaken).
func GenerateJoinCode() (string, error) {
	return randomString(codeAlphabet, joinCodeLength)
}

func newSessionID() (string, error) {
	suffix, err := randomString(idAlphabet, sessionIDLength)
	if err != nil {
		return "", err
	}
	return sessionIDPrefix + suffix, nil
}

func randomString(alphabet string, length int) (string, error) {
	// Bytes at or above the largest multiple of len(alphabet) are rejected,
	// keeping every character equally likely.
	limit := 256 - 256%len(alphabet)
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
