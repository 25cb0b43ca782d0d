// Package random provides seed helpers for the injected pseudo-random sources.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ForPlayer derives a per-player source from a base seed so that sessions
// replay independently of each other.
func ForPlayer(base int64, playerID string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(playerID))
	return rand.New(rand.NewSource(base ^ int64(h.Sum64())))
}
