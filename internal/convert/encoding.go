package convert

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decoderFor maps a configured encoding name to a decoder. The default
// "utf-8-sig" accepts plain UTF-8 and strips a leading byte-order mark,
// matching what spreadsheet exports commonly produce.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8-sig", "utf8-sig":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "utf-8", "utf8":
		return unicode.UTF8.NewDecoder(), nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ValidateEncoding reports whether name is a supported input encoding.
// Used at startup so a bad --encoding fails before watching begins.
func ValidateEncoding(name string) error {
	_, err := decoderFor(name)
	return err
}

// decodeReader wraps r so the pipeline always reads UTF-8.
func decodeReader(r io.Reader, encodingName string) (io.Reader, error) {
	dec, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, dec), nil
}
