package convert

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// tempExt marks in-progress output files. It is one of the suffixes the
// watch filter excludes, so writing into the watched directory never
// triggers a conversion of our own temp file.
const tempExt = ".tmp"

// WriteOptions selects the output format for one conversion.
type WriteOptions struct {
	// Lines selects JSON Lines output: one compact object per line.
	Lines bool
	// Indent is the pretty-print width for array elements; 0 keeps
	// elements compact. Ignored in Lines mode.
	Indent int
}

// Ext returns the output extension for the selected mode.
func (o WriteOptions) Ext() string {
	if o.Lines {
		return ".jsonl"
	}
	return ".json"
}

// ResolveTarget picks the final output path for a source file. With
// overwrite enabled the natural name is always used; otherwise existing
// names are skipped by probing name_1, name_2, ... until a free slot is
// found. Probing is only collision-safe within this process, which is fine:
// a single worker owns all output naming.
func ResolveTarget(outDir, srcPath string, opts WriteOptions, overwrite bool) string {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	target := filepath.Join(outDir, base+opts.Ext())
	if overwrite {
		return target
	}
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return target
	}
	for i := 1; ; i++ {
		candidate := filepath.Join(outDir, fmt.Sprintf("%s_%d%s", base, i, opts.Ext()))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// recordSource is the streaming input to WriteRecords; satisfied by
// RecordReader.
type recordSource interface {
	Next() (Record, error)
}

// WriteRecords streams records to a sibling temporary file and atomically
// renames it onto target once the full write has succeeded. On any failure
// the temporary file is removed and the target path is left untouched, so
// a partial document is never observable.
func WriteRecords(target string, src recordSource, opts WriteOptions) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := target + tempExt
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	if opts.Lines {
		err = writeLines(w, src)
	} else {
		err = writeArray(w, src, opts.Indent)
	}
	if err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err = os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish output: %w", err)
	}
	return nil
}

// writeLines emits one compact JSON object per record per line.
func writeLines(w *bufio.Writer, src recordSource) error {
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
}

// writeArray emits a single JSON array, each element optionally re-indented
// to the configured width, elements separated by commas.
func writeArray(w *bufio.Writer, src recordSource, indent int) error {
	if err := w.WriteByte('['); err != nil {
		return err
	}
	first := true
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if indent > 0 {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, data, "", strings.Repeat(" ", indent)); err != nil {
				return err
			}
			data = pretty.Bytes()
		}
		if !first {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		first = false
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return w.WriteByte(']')
}
