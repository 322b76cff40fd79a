package convert

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// RecordReader produces a lazy, finite sequence of Records from one
// delimited file. Field naming is decided once per file: header mode when
// the first row parses cleanly and every cell is non-blank, positional mode
// ("col1", "col2", ...) otherwise. Falling back to positional mode re-reads
// the file from the start, so the would-be header row becomes a record too.
type RecordReader struct {
	file     *os.File
	dialect  Dialect
	encoding string

	cr     *csv.Reader
	header []string // nil in positional mode
}

// NewRecordReader opens path and decides the field-naming mode for this
// conversion. The caller must Close the reader.
func NewRecordReader(path string, dialect Dialect, encodingName string) (*RecordReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &RecordReader{file: f, dialect: dialect, encoding: encodingName}
	if err := r.rewind(); err != nil {
		f.Close()
		return nil, err
	}

	header, err := r.cr.Read()
	if err == io.EOF {
		// Empty file: positional mode with no rows to emit.
		return r, nil
	}
	if err == nil && validHeader(header) {
		r.header = header
		return r, nil
	}

	// No usable header: full retry from the start of the file.
	if err := r.rewind(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// validHeader reports whether the first row can name fields: it must be
// non-empty with every cell non-blank after trimming.
func validHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			return false
		}
	}
	return true
}

// rewind rebuilds the decode/parse chain from the start of the file.
func (r *RecordReader) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", r.file.Name(), err)
	}

	decoded, err := decodeReader(r.file, r.encoding)
	if err != nil {
		return err
	}
	if r.dialect.Quote != '"' && r.dialect.Quote != 0 {
		decoded = newQuoteTranslator(decoded, r.dialect.Quote, r.dialect.Comma)
	}

	cr := csv.NewReader(decoded)
	cr.Comma = r.dialect.Comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	r.cr = cr
	return nil
}

// HeaderMode reports whether field names come from a header row.
func (r *RecordReader) HeaderMode() bool { return r.header != nil }

// Next returns the next Record, or io.EOF when the file is exhausted.
func (r *RecordReader) Next() (Record, error) {
	row, err := r.cr.Read()
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if r.header == nil {
		for i, cell := range row {
			rec.Append(fmt.Sprintf("col%d", i+1), cell)
		}
		return rec, nil
	}

	for i, name := range r.header {
		if i < len(row) {
			rec.Append(name, row[i])
		} else {
			rec.AppendNull(name)
		}
	}
	if len(row) > len(r.header) {
		rec.AppendExtra(OverflowKey, row[len(r.header):])
	}
	return rec, nil
}

// Close releases the underlying file.
func (r *RecordReader) Close() error {
	return r.file.Close()
}

// quoteTranslator rewrites a non-standard quote character to the double
// quote encoding/csv understands, preserving the dialect's structure: a
// quote at the start of a field opens a quoted region, a doubled quote
// inside the region is the escaped literal character, and a lone quote
// closes the region. Literal double quotes inside a quoted region are
// doubled so they survive csv unescaping; mid-field quote characters in
// unquoted fields stay literal, matching LazyQuotes behavior.
type quoteTranslator struct {
	src          *bufio.Reader
	quote        rune
	comma        rune
	buf          bytes.Buffer
	inQuoted     bool
	atFieldStart bool
}

func newQuoteTranslator(src io.Reader, quote, comma rune) io.Reader {
	return &quoteTranslator{
		src:          bufio.NewReader(src),
		quote:        quote,
		comma:        comma,
		atFieldStart: true,
	}
}

func (t *quoteTranslator) Read(p []byte) (int, error) {
	for t.buf.Len() < len(p) {
		r, _, err := t.src.ReadRune()
		if err != nil {
			if t.buf.Len() > 0 {
				break
			}
			return 0, err
		}
		t.translate(r)
	}
	return t.buf.Read(p)
}

func (t *quoteTranslator) translate(r rune) {
	switch {
	case r == t.quote && t.inQuoted:
		next, _, err := t.src.ReadRune()
		if err == nil && next == t.quote {
			// Doubled quote: the escaped literal character.
			t.buf.WriteRune(t.quote)
			return
		}
		if err == nil {
			t.src.UnreadRune()
		}
		t.buf.WriteByte('"')
		t.inQuoted = false
		t.atFieldStart = false

	case r == t.quote && t.atFieldStart:
		t.buf.WriteByte('"')
		t.inQuoted = true
		t.atFieldStart = false

	case r == '"' && t.inQuoted:
		// Literal double quote inside the region: double it so csv
		// unescaping restores it.
		t.buf.WriteString(`""`)

	case (r == t.comma || r == '\n' || r == '\r') && !t.inQuoted:
		t.buf.WriteRune(r)
		t.atFieldStart = true

	default:
		t.buf.WriteRune(r)
		t.atFieldStart = false
	}
}
