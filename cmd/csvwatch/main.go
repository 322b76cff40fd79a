// csvwatch watches a directory for CSV files and converts each one, once it
// has settled, into a JSON document published atomically into an output
// directory.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/steveyegge/csvwatch/internal/config"
	"github.com/steveyegge/csvwatch/internal/daemon"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "csvwatch --watch DIR",
	Short: "Watch a directory for CSV files and convert them to JSON",
	Long: `csvwatch monitors a directory for newly created or modified CSV files
and converts each one into a JSON document once it has stopped changing.

Outputs are written atomically: a temporary sibling file is fully written
and then renamed into place, so a partial document is never observable.
By default name.csv becomes name.json (a JSON array of row objects);
--jsonl emits one compact object per line into name.jsonl instead.

Field names come from the header row when it is well formed; otherwise
rows are keyed positionally as col1, col2, ... The delimiter and quote
character are sniffed from file content unless configured explicitly.`,
	SilenceUsage: true,
	RunE:         runWatch,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("watch", "", "directory to watch for CSV files (required)")
	flags.String("out", "", "directory for JSON output (default: same as --watch)")
	flags.Bool("recursive", false, "recurse into subdirectories")
	flags.Bool("process-existing", false, "convert CSV files already present at startup")
	flags.Bool("jsonl", false, "write JSON Lines (.jsonl) instead of an array (.json)")
	flags.Bool("overwrite", false, "overwrite existing outputs instead of probing new names")
	flags.Int("indent", 0, "pretty-print indent for array elements (0 = compact)")
	flags.String("delimiter", "", "CSV delimiter (default: sniff, then ',')")
	flags.String("quotechar", "", "CSV quote character (default: sniff, then '\"')")
	flags.String("encoding", "utf-8-sig", "input text encoding")
	flags.Duration("debounce", 1250*time.Millisecond, "quiet period before converting a changed file")
	flags.Duration("poll-interval", 2*time.Second, "scan period for the polling fallback")
	flags.Bool("force-poll", false, "always poll instead of using native notifications")
	flags.String("log-file", "", "write logs to this rotating file instead of stderr")
	flags.StringVar(&cfgFile, "config", "", "config file (YAML or TOML)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg, "[csvwatch] ")

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}

// newLogger builds the shared process logger, routing through a rotating
// file when one is configured.
func newLogger(cfg *config.Config, prefix string) *log.Logger {
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
	}
	return log.New(w, prefix, log.LstdFlags)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
