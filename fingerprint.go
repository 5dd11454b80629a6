package tableau

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

// fingerprint hashes the canonical JSON form of a configuration record.
// Records that marshal identically share a fingerprint.
func fingerprint(v any) uint64 {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}
