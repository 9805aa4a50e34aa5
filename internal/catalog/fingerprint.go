package catalog

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/tozd/go/errors"
)

// Digest - фиксированный 256-битный хеш каталога
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports an unset digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// Combine hashes content followed by deps, in order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// fingerprint folds the msgpack encoding of every descriptor, in catalog
// order, so reordering descriptors changes the digest.
func fingerprint(descs []*Descriptor) (Digest, error) {
	parts := make([]Digest, 0, len(descs))
	for _, d := range descs {
		raw, err := msgpack.Marshal(d)
		if err != nil {
			return Digest{}, errors.WithDetails(
				errors.Errorf("encode descriptor: %w", err),
				"descriptor", d.ID,
			)
		}
		parts = append(parts, sha256.Sum256(raw))
	}
	return Combine(Digest{}, parts...), nil
}
