package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/csvwatch/internal/config"
	"github.com/steveyegge/csvwatch/internal/convert"
	"github.com/steveyegge/csvwatch/internal/watch"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file...]",
	Short: "Convert CSV files once, without watching",
	Long: `Convert the given CSV files (or, with --watch, every eligible CSV file
under that directory) through the same pipeline the watcher uses, then
exit. Stability detection is skipped: the files are assumed complete.`,
	SilenceUsage: true,
	RunE:         runConvert,
}

func init() {
	flags := convertCmd.Flags()
	flags.String("watch", "", "directory to scan for CSV files when no file arguments are given")
	flags.String("out", "", "directory for JSON output (default: alongside the inputs)")
	flags.Bool("recursive", false, "recurse into subdirectories when scanning")
	flags.Bool("jsonl", false, "write JSON Lines (.jsonl) instead of an array (.json)")
	flags.Bool("overwrite", false, "overwrite existing outputs instead of probing new names")
	flags.Int("indent", 0, "pretty-print indent for array elements (0 = compact)")
	flags.String("delimiter", "", "CSV delimiter (default: sniff, then ',')")
	flags.String("quotechar", "", "CSV quote character (default: sniff, then '\"')")
	flags.String("encoding", "utf-8-sig", "input text encoding")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), "")
	if err != nil {
		return err
	}
	if err := convert.ValidateEncoding(cfg.Encoding); err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		if cfg.Watch == "" {
			return fmt.Errorf("either file arguments or --watch is required")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		paths, err = watch.ListExisting(cfg.Watch, cfg.Recursive)
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		fmt.Println("nothing to convert")
		return nil
	}

	opts := convert.WriteOptions{Lines: cfg.JSONLines, Indent: cfg.Indent}
	failed := 0
	for _, path := range paths {
		if !watch.Eligible(path) {
			fmt.Fprintf(os.Stderr, "skipping %s: not a CSV file\n", path)
			continue
		}
		target, err := convertOne(path, cfg, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to convert %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("wrote %s\n", target)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// convertOne runs the sniff→transform→write pipeline for a single file.
func convertOne(path string, cfg *config.Config, opts convert.WriteOptions) (string, error) {
	sample, err := convert.ReadSample(path, cfg.Encoding)
	if err != nil {
		return "", err
	}
	dialect := convert.DetectDialect(sample, cfg.Delimiter, cfg.QuoteChar)

	src, err := convert.NewRecordReader(path, dialect, cfg.Encoding)
	if err != nil {
		return "", err
	}
	defer src.Close()

	outDir := cfg.Out
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	target := convert.ResolveTarget(outDir, path, opts, cfg.Overwrite)
	if err := convert.WriteRecords(target, src, opts); err != nil {
		return "", err
	}
	return target, nil
}
