package convert

import (
	"bytes"
	"encoding/json"
)

// OverflowKey is the field name used when a row carries more values than
// the header has columns. The extra values are kept as a JSON string array
// under this key.
const OverflowKey = "_overflow"

// Field is one named value within a Record. A nil Extra with Null unset is
// a plain text value; Null marks a column the row did not supply; Extra
// holds the overflow values for rows longer than the header.
type Field struct {
	Key   string
	Value string
	Null  bool
	Extra []string
}

// Record is an ordered mapping from field name to text value, representing
// one CSV row. Order is preserved through JSON serialization.
type Record struct {
	fields []Field
}

// Append adds a text field.
func (r *Record) Append(key, value string) {
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// AppendNull adds a field whose column was absent from the row.
func (r *Record) AppendNull(key string) {
	r.fields = append(r.fields, Field{Key: key, Null: true})
}

// AppendExtra adds the overflow values of a row longer than the header.
func (r *Record) AppendExtra(key string, values []string) {
	r.fields = append(r.fields, Field{Key: key, Extra: values})
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Fields returns the fields in insertion order.
func (r *Record) Fields() []Field { return r.fields }

// MarshalJSON encodes the record as a JSON object with fields in insertion
// order. Non-ASCII text is written literally rather than escaped.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		switch {
		case f.Null:
			buf.WriteString("null")
		case f.Extra != nil:
			buf.WriteByte('[')
			for j, v := range f.Extra {
				if j > 0 {
					buf.WriteByte(',')
				}
				if err := writeJSONString(&buf, v); err != nil {
					return nil, err
				}
			}
			buf.WriteByte(']')
		default:
			if err := writeJSONString(&buf, f.Value); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSONString appends s as a JSON string without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // drop the newline Encode appends
	return nil
}
