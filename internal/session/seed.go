package session

import (
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// PlacementSeed derives the letter placer's PCG seed for a game from a keyed
// blake2b hash of its id. The same (salt, id) always yields the same layouts.
func PlacementSeed(salt []byte, id uuid.UUID) (uint64, uint64) {
	key := salt
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// Only reachable with an oversized key, which is folded above.
		panic(err)
	}
	h.Write(id[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}
