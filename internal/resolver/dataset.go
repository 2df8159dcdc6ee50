package resolver

import (
	"github.com/klabast/wb-services/tomme-kalender/internal/matcher"
	"github.com/klabast/wb-services/tomme-kalender/internal/property"
)

// Dataset is an immutable snapshot of the loaded property records together
// with their normalized name index. A new Dataset is built for every load
// and passed explicitly to Resolve.
type Dataset struct {
	records     []property.Record
	index       *matcher.Index
	fingerprint string
}

// NewDataset copies records and indexes them
func NewDataset(records []property.Record) *Dataset {
	rs := make([]property.Record, len(records))
	copy(rs, records)
	return &Dataset{
		records:     rs,
		index:       matcher.NewIndex(rs),
		fingerprint: property.Fingerprint(rs),
	}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Properties returns the number of distinct normalized property names
func (d *Dataset) Properties() int {
	return d.index.Len()
}

// Fingerprint identifies this dataset generation
func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}
