package property

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource() *CSVSource {
	return &CSVSource{
		Delimiter:    ';',
		Encoding:     EncodingLatin1,
		NameColumn:   "Eiendomsnavn",
		RouteColumn:  "Rutekode",
		StreamColumn: "Avfallstype",
	}
}

func TestParseLatin1(t *testing.T) {
	// "Kirkevåg 3" with å encoded as a single ISO-8859-1 byte
	data := "Eiendomsnavn;Rutekode;Avfallstype\n" +
		"Kirkev\xe5g 3;00012;Restavfall\n" +
		"\"Oak Street 1\";14;Papir\n"

	records, err := newTestSource().Parse(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Record{Name: "Kirkevåg 3", RouteCode: "00012", Stream: "Restavfall"}, records[0])
	assert.Equal(t, Record{Name: "Oak Street 1", RouteCode: "14", Stream: "Papir"}, records[1])
}

func TestParseUTF8WithBOM(t *testing.T) {
	src := newTestSource()
	src.Encoding = EncodingUTF8
	data := "\xef\xbb\xbfEiendomsnavn;Rutekode\nKirkevåg 3;00012\n"

	records, err := src.Parse(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Kirkevåg 3", records[0].Name)
	assert.Empty(t, records[0].Stream)
}

func TestParseSkipsBlankNames(t *testing.T) {
	data := "Eiendomsnavn;Rutekode\n;00012\n   ;00013\nOak Street 1;00014\n"

	records, err := newTestSource().Parse(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Oak Street 1", records[0].Name)
}

func TestParseShortRows(t *testing.T) {
	data := "Eiendomsnavn;Rutekode;Avfallstype\nOak Street 1\n"

	records, err := newTestSource().Parse(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].RouteCode)
}

func TestParseMissingColumn(t *testing.T) {
	_, err := newTestSource().Parse(context.Background(), strings.NewReader("Adresse;Rutekode\nx;1\n"))
	assert.True(t, errors.Is(err, ErrMissingColumn))

	_, err = newTestSource().Parse(context.Background(), strings.NewReader("Eiendomsnavn;Rute\nx;1\n"))
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestParseEmpty(t *testing.T) {
	_, err := newTestSource().Parse(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseUnsupportedEncoding(t *testing.T) {
	src := newTestSource()
	src.Encoding = "ebcdic"
	_, err := src.Parse(context.Background(), strings.NewReader("Eiendomsnavn;Rutekode\n"))
	assert.Error(t, err)
}

func TestCSVSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eiendommer.csv")
	require.NoError(t, os.WriteFile(path, []byte("Eiendomsnavn;Rutekode\nOak Street 1;00012\n"), 0644))

	src := newTestSource()
	src.Path = path
	records, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	src.Path = filepath.Join(t.TempDir(), "missing.csv")
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := []Record{{Name: "Oak Street 1", RouteCode: "00012"}}
	b := []Record{{Name: "Oak Street 1", RouteCode: "00013"}}

	assert.Equal(t, Fingerprint(a), Fingerprint(a))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(nil), 64)
}
