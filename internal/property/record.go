// Package property holds the raw property records the resolver works on
// and the sources they are loaded from.
package property

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Record is one row of the collection dataset: a property name and one
// of its route codes. A property served by several waste streams appears
// once per stream.
type Record struct {
	Name      string `json:"name"`
	RouteCode string `json:"routeCode"`
	Stream    string `json:"stream,omitempty"`
}

// Source loads the full record set
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// Fingerprint returns a stable hex digest of records, used to tell
// dataset generations apart in caches and ETags.
func Fingerprint(records []Record) string {
	h, _ := blake2b.New256(nil)
	for _, r := range records {
		h.Write([]byte(r.Name))
		h.Write([]byte{0})
		h.Write([]byte(r.RouteCode))
		h.Write([]byte{0})
		h.Write([]byte(r.Stream))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
