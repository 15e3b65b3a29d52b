// Package entropy builds the random sources the simulation draws from.
// A fixed seed gives a repeatable run; seed 0 draws one from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// NewRand returns a generator for seed, or for a crypto-random seed when
// seed is 0.
func NewRand(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = CryptoSeed()
		slog.Debug("random seed drawn", "seed", seed)
	}
	return mrand.New(mrand.NewSource(seed))
}

// CryptoSeed returns a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed odd constant.
		return 0x5DEECE66D
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
