package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/klabast/wb-services/tomme-kalender/internal/property"
)

// Defaults for Match and Accept
const (
	DefaultLimit     = 5
	DefaultThreshold = 85
)

// Candidate is a dataset property scored against a query
type Candidate struct {
	Record property.Record `json:"record"`
	Name   string          `json:"normalizedName"`
	Score  int             `json:"score"`
}

type entry struct {
	record property.Record
	name   string
	sorted string
}

// Index holds the normalized form of every distinct property name in a
// record set, in first-seen order. It is read-only after NewIndex.
type Index struct {
	entries []entry
	byName  map[string][]property.Record
}

// NewIndex normalizes every record name once
func NewIndex(records []property.Record) *Index {
	idx := &Index{byName: make(map[string][]property.Record)}
	for _, r := range records {
		name := Normalize(r.Name)
		if _, seen := idx.byName[name]; !seen {
			idx.entries = append(idx.entries, entry{record: r, name: name, sorted: sortTokens(name)})
		}
		idx.byName[name] = append(idx.byName[name], r)
	}
	return idx
}

// Len returns the number of distinct normalized names
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Records returns every record whose normalized name equals name, in dataset order
func (idx *Index) Records(name string) []property.Record {
	return idx.byName[name]
}

// Match scores query against every distinct name and returns the best
// limit candidates, highest score first. Equal scores keep dataset order.
// A query that normalizes to nothing matches nothing.
func (idx *Index) Match(query string, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := sortTokens(Normalize(query))
	if q == "" {
		return nil
	}

	cands := make([]Candidate, len(idx.entries))
	for i, e := range idx.entries {
		cands[i] = Candidate{Record: e.record, Name: e.name, Score: ratio(q, e.sorted)}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})

	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}

// Accept returns the top candidate if its score is strictly above threshold
func Accept(cands []Candidate, threshold int) (Candidate, bool) {
	if len(cands) == 0 || cands[0].Score <= threshold {
		return Candidate{}, false
	}
	return cands[0], true
}

// Similarity returns the token-order-insensitive similarity of a and b (0..100)
func Similarity(a, b string) int {
	return ratio(sortTokens(Normalize(a)), sortTokens(Normalize(b)))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func ratio(a, b string) int {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}
