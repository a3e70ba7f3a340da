package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a fixed 256-bit content hash, layout-compatible with
// source.File.Hash.
type Digest [32]byte

// DigestBytes hashes raw content.
func DigestBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// Combine folds multiple digests into one: H(d1 || d2 || ...). Callers
// must pass the parts in a deterministic order.
func Combine(parts ...Digest) Digest {
	h := sha256.New()
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Hex renders the digest for file names and logs.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}
