package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// StreamFingerprint identifies a generated bit stream so repeated runs can be compared
type StreamFingerprint Hash

func (h StreamFingerprint) String() string { return Hash(h).String() }

// ComputeStreamFingerprint packs bits eight to a byte (MSB first) and hashes them.
// The bit count is mixed in so streams differing only in trailing zeros differ.
func ComputeStreamFingerprint(bits []uint8) StreamFingerprint {
	packed := make([]byte, 8+(len(bits)+7)/8)
	n := uint64(len(bits))
	for i := 0; i < 8; i++ {
		packed[i] = byte(n >> (56 - 8*i))
	}
	for i, b := range bits {
		if b&1 == 1 {
			packed[8+i/8] |= 0x80 >> (i % 8)
		}
	}
	return StreamFingerprint(NewHash(packed))
}
