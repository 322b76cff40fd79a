package convert

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readAll(t *testing.T, r *RecordReader) []Record {
	t.Helper()
	var recs []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		recs = append(recs, rec)
	}
}

// TestRecordReader_HeaderMode verifies field names come from a well-formed
// header row.
func TestRecordReader_HeaderMode(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n3,4\n")
	r, err := NewRecordReader(path, DefaultDialect, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	if !r.HeaderMode() {
		t.Fatal("expected header mode")
	}
	recs := readAll(t, r)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	f := recs[0].Fields()
	if f[0].Key != "a" || f[0].Value != "1" || f[1].Key != "b" || f[1].Value != "2" {
		t.Errorf("first record = %+v", f)
	}
}

// TestRecordReader_BlankHeaderCellFallsBack verifies that any blank header
// cell rejects header mode and every row, including the first, is keyed
// positionally.
func TestRecordReader_BlankHeaderCellFallsBack(t *testing.T) {
	path := writeCSV(t, ",b\n1,2\n")
	r, err := NewRecordReader(path, DefaultDialect, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	if r.HeaderMode() {
		t.Fatal("expected positional mode")
	}
	recs := readAll(t, r)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (header row must be re-read as data)", len(recs))
	}
	f := recs[0].Fields()
	if f[0].Key != "col1" || f[0].Value != "" || f[1].Key != "col2" || f[1].Value != "b" {
		t.Errorf("first record = %+v", f)
	}
	f = recs[1].Fields()
	if f[0].Key != "col1" || f[0].Value != "1" {
		t.Errorf("second record = %+v", f)
	}
}

// TestRecordReader_WhitespaceHeaderCellFallsBack verifies trimming is
// applied to the header predicate.
func TestRecordReader_WhitespaceHeaderCellFallsBack(t *testing.T) {
	path := writeCSV(t, "a,   \n1,2\n")
	r, err := NewRecordReader(path, DefaultDialect, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	if r.HeaderMode() {
		t.Error("whitespace-only header cell must reject header mode")
	}
}

// TestRecordReader_ShortRowPadsNull verifies rows shorter than the header
// carry null for the missing trailing columns.
func TestRecordReader_ShortRowPadsNull(t *testing.T) {
	path := writeCSV(t, "a,b,c\n1,2\n")
	r, err := NewRecordReader(path, DefaultDialect, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	recs := readAll(t, r)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	f := recs[0].Fields()
	if len(f) != 3 {
		t.Fatalf("got %d fields, want 3", len(f))
	}
	if !f[2].Null || f[2].Key != "c" {
		t.Errorf("missing column = %+v, want null c", f[2])
	}
}

// TestRecordReader_LongRowKeepsOverflow verifies extra values are kept
// under the overflow key.
func TestRecordReader_LongRowKeepsOverflow(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2,3,4\n")
	r, err := NewRecordReader(path, DefaultDialect, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	recs := readAll(t, r)
	f := recs[0].Fields()
	last := f[len(f)-1]
	if last.Key != OverflowKey {
		t.Fatalf("last field = %+v, want overflow", last)
	}
	if len(last.Extra) != 2 || last.Extra[0] != "3" || last.Extra[1] != "4" {
		t.Errorf("overflow values = %v, want [3 4]", last.Extra)
	}
}

// TestRecordReader_EmptyFile verifies an empty file yields zero records.
func TestRecordReader_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	r, err := NewRecordReader(path, DefaultDialect, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	if recs := readAll(t, r); len(recs) != 0 {
		t.Errorf("got %d records from empty file, want 0", len(recs))
	}
}

// TestRecordReader_SemicolonDialect verifies a non-default delimiter flows
// through parsing.
func TestRecordReader_SemicolonDialect(t *testing.T) {
	path := writeCSV(t, "a;b\n1;2\n")
	r, err := NewRecordReader(path, Dialect{Comma: ';', Quote: '"'}, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	recs := readAll(t, r)
	f := recs[0].Fields()
	if f[0].Key != "a" || f[0].Value != "1" {
		t.Errorf("record = %+v", f)
	}
}

// TestRecordReader_SingleQuoteDialect verifies the quote-translating reader
// handles a single-quote dialect including embedded delimiters and doubled
// quotes.
func TestRecordReader_SingleQuoteDialect(t *testing.T) {
	path := writeCSV(t, "a,b\n'hello, world','it''s'\n")
	r, err := NewRecordReader(path, Dialect{Comma: ',', Quote: '\''}, "utf-8")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	recs := readAll(t, r)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	f := recs[0].Fields()
	if f[0].Value != "hello, world" {
		t.Errorf("first value = %q, want %q", f[0].Value, "hello, world")
	}
	if f[1].Value != "it's" {
		t.Errorf("second value = %q, want %q", f[1].Value, "it's")
	}
}

// TestRecordReader_UTF8SigStripsBOM verifies the default encoding removes a
// leading byte-order mark so the first header cell is clean.
func TestRecordReader_UTF8SigStripsBOM(t *testing.T) {
	path := writeCSV(t, "\xef\xbb\xbfa,b\n1,2\n")
	r, err := NewRecordReader(path, DefaultDialect, "utf-8-sig")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	if !r.HeaderMode() {
		t.Fatal("expected header mode")
	}
	recs := readAll(t, r)
	if key := recs[0].Fields()[0].Key; key != "a" {
		t.Errorf("first header cell = %q, want %q (BOM not stripped)", key, "a")
	}
}

// TestRecordReader_Latin1Decodes verifies a configured legacy encoding is
// decoded to UTF-8 in output values.
func TestRecordReader_Latin1Decodes(t *testing.T) {
	// "café" in Latin-1: é is 0xE9.
	path := writeCSV(t, "name\ncaf\xe9\n")
	r, err := NewRecordReader(path, DefaultDialect, "latin-1")
	if err != nil {
		t.Fatalf("NewRecordReader failed: %v", err)
	}
	defer r.Close()

	recs := readAll(t, r)
	if v := recs[0].Fields()[0].Value; v != "café" {
		t.Errorf("decoded value = %q, want %q", v, "café")
	}
}
