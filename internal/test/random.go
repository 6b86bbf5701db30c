package test

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	asciiLetters  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	symbolLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomASCIIString returns a pseudo-random alphanumeric string with a length
// in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	return randomFrom(asciiLetters, minLen, maxLen)
}

// RandomSymbol returns a ticker such as "QXZ.US".
func RandomSymbol() string {
	var b strings.Builder
	b.WriteString(randomFrom(symbolLetters, 1, 5))
	b.WriteString(".US")
	return b.String()
}

func randomFrom(alphabet string, minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	rngMu.Lock()
	defer rngMu.Unlock()
	length := minLen + rng.Intn(maxLen-minLen+1)
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(buf)
}
