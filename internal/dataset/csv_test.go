package dataset_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"hopper/internal/dataset"
)

func TestDecodeBasic(t *testing.T) {
	raw := []byte("id,name,score\n1,alpha,10\n2,beta,\n")

	d, err := dataset.Decode(raw, nil, ',')
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(d.Columns, []string{"id", "name", "score"}) {
		t.Fatalf("columns = %v", d.Columns)
	}
	if len(d.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(d.Rows))
	}
	if d.Rows[0].Value("name") != "alpha" {
		t.Fatalf("row 0 name = %q", d.Rows[0].Value("name"))
	}
	if !d.Rows[1].IsNull("score") {
		t.Fatal("empty cell should be null")
	}
}

func TestDecodeCustomDelimiter(t *testing.T) {
	raw := []byte("id;name\n1;semi\n")
	d, err := dataset.Decode(raw, nil, ';')
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Rows[0].Value("name") != "semi" {
		t.Fatalf("name = %q", d.Rows[0].Value("name"))
	}
}

func TestDecodeRejectsDuplicateColumn(t *testing.T) {
	raw := []byte("id,name,id\n1,x,2\n")
	_, err := dataset.Decode(raw, nil, ',')
	if !errors.Is(err, dataset.ErrDuplicateColumn) {
		t.Fatalf("expected ErrDuplicateColumn, got %v", err)
	}
}

func TestDecodeRejectsEmptyContent(t *testing.T) {
	_, err := dataset.Decode(nil, nil, ',')
	if !errors.Is(err, dataset.ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
}

func TestDecodeRejectsRaggedRows(t *testing.T) {
	raw := []byte("id,name\n1,x,extra\n")
	_, err := dataset.Decode(raw, nil, ',')
	if err == nil {
		t.Fatal("expected parse error for ragged row")
	}
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	raw := []byte("id,name\n1,\xff\xfe\n")
	_, err := dataset.Decode(raw, nil, ',')
	if !errors.Is(err, dataset.ErrMalformedEncoding) {
		t.Fatalf("expected ErrMalformedEncoding, got %v", err)
	}
}

func TestDecodeLatin1(t *testing.T) {
	// "café" with Latin-1 e-acute (0xE9).
	raw := []byte("id,name\n1,caf\xe9\n")
	d, err := dataset.Decode(raw, charmap.ISO8859_1, ',')
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := d.Rows[0].Value("name"); got != "café" {
		t.Fatalf("name = %q", got)
	}
}

func TestDecodeRejectsUndecodableByte(t *testing.T) {
	// 0xA5 has no assignment in ISO 8859-3; the decoder substitutes
	// U+FFFD, which the codec treats as corruption.
	raw := []byte("id,name\n1,bad\xa5\n")
	_, err := dataset.Decode(raw, charmap.ISO8859_3, ',')
	if !errors.Is(err, dataset.ErrMalformedEncoding) {
		t.Fatalf("expected ErrMalformedEncoding, got %v", err)
	}
}

func TestEncodeWritesColumnsInOrder(t *testing.T) {
	d := dataset.Dataset{
		Columns: []string{"a", "b", "c"},
		Rows: []dataset.Row{
			{"a": "1", "c": "3"},
			{"b": "2"},
		},
	}

	var buf bytes.Buffer
	if err := dataset.Encode(&buf, d, nil, ','); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "a,b,c\n1,,3\n,2,\n"
	if buf.String() != want {
		t.Fatalf("encoded = %q, want %q", buf.String(), want)
	}
}

func TestEncodeDecodeLatin1RoundTrip(t *testing.T) {
	d := dataset.Dataset{
		Columns: []string{"id", "name"},
		Rows:    []dataset.Row{{"id": "1", "name": "café"}},
	}

	var buf bytes.Buffer
	if err := dataset.Encode(&buf, d, charmap.ISO8859_1, ','); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte{0xe9}) {
		t.Fatalf("expected Latin-1 byte in output, got %q", buf.Bytes())
	}

	decoded, err := dataset.Decode(buf.Bytes(), charmap.ISO8859_1, ',')
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := decoded.Rows[0].Value("name"); got != "café" {
		t.Fatalf("round-trip name = %q", got)
	}
}

func TestEncodeRejectsUnrepresentableRune(t *testing.T) {
	d := dataset.Dataset{
		Columns: []string{"name"},
		Rows:    []dataset.Row{{"name": "日本語"}},
	}
	var buf bytes.Buffer
	err := dataset.Encode(&buf, d, charmap.ISO8859_1, ',')
	if err == nil {
		t.Fatal("expected encode error for unrepresentable rune")
	}
}

func TestEncodeQuotesDelimiterInValues(t *testing.T) {
	d := dataset.Dataset{
		Columns: []string{"id", "note"},
		Rows:    []dataset.Row{{"id": "1", "note": "a,b"}},
	}
	var buf bytes.Buffer
	if err := dataset.Encode(&buf, d, nil, ','); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "\"a,b\"") {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}

	decoded, err := dataset.Decode(buf.Bytes(), nil, ',')
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := decoded.Rows[0].Value("note"); got != "a,b" {
		t.Fatalf("note = %q", got)
	}
}
