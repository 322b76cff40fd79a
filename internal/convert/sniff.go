package convert

import (
	"errors"
	"strings"
)

// SampleSize is how much of the file head is inspected for dialect sniffing.
const SampleSize = 4096

// ErrNoDialect is returned by Sniff when no candidate delimiter appears
// consistently across the sample. Callers fall back to the default dialect;
// this is a normal path, not a failure.
var ErrNoDialect = errors.New("no consistent dialect found in sample")

// Dialect describes how a delimited file is tokenized.
type Dialect struct {
	Comma rune
	Quote rune
}

// DefaultDialect is the fallback when nothing is configured and sniffing
// finds no consistent delimiter.
var DefaultDialect = Dialect{Comma: ',', Quote: '"'}

// candidateDelims are tried in order; earlier candidates win ties.
var candidateDelims = []rune{',', ';', '\t', '|'}

// Sniff infers the dialect from a bounded sample of file content. A
// delimiter is accepted only when every non-empty sample line contains the
// same nonzero number of occurrences outside double-quoted regions; among
// the accepted candidates the one with the most occurrences per line wins.
func Sniff(sample []byte) (Dialect, error) {
	lines := sampleLines(sample)
	if len(lines) == 0 {
		return Dialect{}, ErrNoDialect
	}

	best := rune(0)
	bestCount := 0
	for _, delim := range candidateDelims {
		count := delimCount(lines[0], delim)
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if delimCount(line, delim) != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestCount {
			best = delim
			bestCount = count
		}
	}
	if best == 0 {
		return Dialect{}, ErrNoDialect
	}

	return Dialect{Comma: best, Quote: sniffQuote(lines, best)}, nil
}

// DetectDialect resolves the dialect for one conversion. Explicit overrides
// win unconditionally; otherwise the sample is sniffed; on sniffing failure
// each unresolved part falls back to the default.
func DetectDialect(sample []byte, delimiter, quote string) Dialect {
	d := DefaultDialect
	sniffed, err := Sniff(sample)
	if err == nil {
		d = sniffed
	}
	if delimiter != "" {
		d.Comma = firstRune(delimiter)
	}
	if quote != "" {
		d.Quote = firstRune(quote)
	}
	return d
}

// sampleLines splits the sample into non-empty lines, discarding a final
// line that was cut off mid-row by the sample boundary.
func sampleLines(sample []byte) []string {
	s := string(sample)
	truncated := len(sample) == SampleSize && !strings.HasSuffix(s, "\n")
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if truncated && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// delimCount counts occurrences of delim outside double-quoted regions.
func delimCount(line string, delim rune) int {
	count := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == delim && !quoted:
			count++
		}
	}
	return count
}

// sniffQuote picks the quote character: double quote when present anywhere
// in the sample, otherwise single quote when it appears adjacent to the
// chosen delimiter or at a line boundary, otherwise the default.
func sniffQuote(lines []string, delim rune) rune {
	for _, line := range lines {
		if strings.ContainsRune(line, '"') {
			return '"'
		}
	}
	d := string(delim)
	for _, line := range lines {
		if strings.HasPrefix(line, "'") || strings.HasSuffix(line, "'") ||
			strings.Contains(line, d+"'") || strings.Contains(line, "'"+d) {
			return '\''
		}
	}
	return '"'
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
