// Package convert implements the CSV-to-JSON conversion pipeline: stability
// detection, dialect sniffing, row transformation and atomic JSON output,
// serialized through a single-consumer worker.
//
// # Pipeline
//
// Each queued path moves through a fixed sequence of states:
//
//	received → filtered → stabilizing → dialect-detection → transforming → writing → done
//
// Any failure after the filter is logged with the offending path and the
// job is abandoned; the worker always continues with the next path. The
// atomic writer guarantees no partial output is ever observable, so an
// abandoned job leaves the filesystem exactly as it was.
//
// # Stability
//
// A file is converted only after its size has been observed unchanged for
// several consecutive samples (StabilityChecker). A file that keeps growing
// for the whole sampling budget is skipped with a warning, not treated as
// an error; a fresh filesystem event re-queues it later.
//
// # Field naming
//
// The first row names the fields when it parses cleanly and every cell is
// non-blank after trimming. Otherwise the whole file is re-read from the
// start in positional mode, where every row — including the would-be
// header — becomes a record keyed col1, col2, ... The two modes never mix
// within one conversion.
//
// # Output
//
// Records are streamed either as a single JSON array (optionally with
// pretty-printed elements) or as JSON Lines. Output is written to a
// sibling .tmp file and renamed into place after a successful sync. When
// overwriting is disabled and the target name is taken, name_1, name_2, ...
// are probed in order.
package convert
