package property

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Supported CSV encodings
const (
	EncodingLatin1 = "iso-8859-1"
	EncodingUTF8   = "utf-8"
)

// ErrMissingColumn is returned when a required header column is absent
var ErrMissingColumn = errors.New("missing column")

// CSVSource reads records from a delimited file with a header row
type CSVSource struct {
	Path         string
	Delimiter    rune
	Encoding     string
	NameColumn   string
	RouteColumn  string
	StreamColumn string // optional
}

// Load opens Path and parses it
func (s *CSVSource) Load(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return s.Parse(ctx, f)
}

// Parse reads records from r
func (s *CSVSource) Parse(ctx context.Context, r io.Reader) ([]Record, error) {
	decoded, err := s.decode(r)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.Comma = s.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameIdx := columnIndex(header, s.NameColumn)
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, s.NameColumn)
	}
	routeIdx := columnIndex(header, s.RouteColumn)
	if routeIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, s.RouteColumn)
	}
	streamIdx := -1
	if s.StreamColumn != "" {
		streamIdx = columnIndex(header, s.StreamColumn)
	}

	var records []Record
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		name := field(row, nameIdx)
		if name == "" {
			continue
		}
		records = append(records, Record{
			Name:      name,
			RouteCode: field(row, routeIdx),
			Stream:    field(row, streamIdx),
		})
	}
	return records, nil
}

func (s *CSVSource) decode(r io.Reader) (io.Reader, error) {
	switch strings.ToLower(s.Encoding) {
	case "", EncodingLatin1, "latin1", "latin-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case EncodingUTF8, "utf8":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("dataset is not valid UTF-8")
		}
		return bytes.NewReader(data), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", s.Encoding)
	}
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
