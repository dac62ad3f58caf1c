package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/hupe1980/researchmesh/internal/util"
)

// Key derives a deterministic cache key from the given parts. Parts are
// case-folded and whitespace-normalized before hashing, so semantically
// identical lookups ("Acme Corp" vs "acme  corp") share one entry. Parts are
// separated by an unprintable delimiter so ("ab", "c") and ("a", "bc") never
// collide.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(util.Normalize(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
