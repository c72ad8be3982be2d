package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0a3b/antseek/internal/config"
	"github.com/0a3b/antseek/internal/engine"
	"github.com/0a3b/antseek/internal/event"
	"github.com/0a3b/antseek/internal/filter"
	"github.com/0a3b/antseek/internal/stats"
	"github.com/0a3b/antseek/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

//nolint:gocyclo // main CLI entry point orchestrates all flag parsing and mode selection
func run() int {
	var (
		directories       []string
		filenames         []string
		matchFilenames    bool
		matchSize         bool
		matchHashStr      string
		hashSizeStr       string
		compareContentStr string
		compareTo         string
		setJoker          string
		compareEverything bool
		outputFormatStr   string
		workers           int
		verbose           bool
		quiet             bool
		showVersion       bool
	)

	rootCmd := &cobra.Command{
		Use:   "antseek --directories <dir>... --filenames <pattern>...",
		Short: "Find duplicate files and search file contents across directory trees",
		Long: `antseek discovers regular files whose basename matches any of the given
patterns, then lists them, clusters them into duplicate groups, or matches
them against a single reference file.

With --compare-everything and --compare-content full, the program
implicitly activates both --match-size and --match-hash first with a
default hash block size of 4K; the output is unchanged.`,
		Example: `  # Scan and list all .txt files located in two trees
  antseek --directories ~/temp ~/mystuff --filenames '.*\.txt$'

  # List capture_[date].jpg/.jpeg files that have at least one duplicate
  # (fast, approximate: file size and first 2K hash)
  antseek --directories ~/temp --filenames '^capture_\d{6,8}\.(jpg|jpeg)$' \
    --compare-everything --match-size --match-hash first --hash-size 2K

  # List .exe or .src files with at least one duplicate (accurate, slower)
  antseek --directories ~/temp --filenames '.*\.(exe|src)$' \
    --compare-everything --compare-content full

  # Find files embedding a reference blob anywhere, ignoring 0xAD bytes
  antseek --directories ~/data --filenames '.*' \
    --compare-to ref.bin --compare-content find --set-joker 0xAD`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "antseek %s\n", version)
				return nil
			}

			// Load optional config file defaults.
			fileCfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config file", "error", err)
			}
			if !cmd.Flags().Changed("workers") && fileCfg.Defaults.Workers != nil {
				workers = *fileCfg.Defaults.Workers
			}
			if !cmd.Flags().Changed("output-format") && fileCfg.Defaults.OutputFormat != nil {
				outputFormatStr = *fileCfg.Defaults.OutputFormat
			}
			if !cmd.Flags().Changed("verbose") && fileCfg.Defaults.Verbose != nil {
				verbose = *fileCfg.Defaults.Verbose
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			}))
			slog.SetDefault(logger)

			opts, err := buildOptions(
				directories, filenames,
				matchFilenames, matchSize,
				matchHashStr, hashSizeStr,
				compareContentStr, compareTo, setJoker,
				compareEverything, outputFormatStr,
			)
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			opts.ApplyPerformanceFloor()

			patterns, err := filter.CompilePatterns(opts.FilenamePatterns)
			if err != nil {
				return err
			}

			// Worker defaults: a third of the cores per stage, at least one
			// each, so traversal, hashing, and comparison overlap.
			perStage := workers
			if perStage <= 0 {
				perStage = max(1, runtime.NumCPU()/3)
			}
			opts.Workers = perStage

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()

			engineCfg := engine.Config{
				Options:    opts,
				Patterns:   patterns,
				Collectors: perStage,
				Hashers:    perStage,
				Comparers:  perStage,
				Stats:      collector,
			}

			// In verbose mode, tee engine events into the structured log.
			var events chan event.Event
			var eventsWg sync.WaitGroup
			if verbose {
				events = make(chan event.Event, 256)
				engineCfg.Events = events
				eventsWg.Add(1)
				go func() {
					defer eventsWg.Done()
					for ev := range events {
						attrs := []any{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
						}
						if ev.Other != "" {
							attrs = append(attrs, slog.String("other", ev.Other))
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						slog.Debug("antseek.event", attrs...)
					}
				}()
			}

			eng, err := engine.New(engineCfg)
			if err != nil {
				return err
			}

			slog.Debug("starting run",
				"directories", opts.Directories,
				"mode", int(opts.OperationMode),
				"workers", perStage,
			)

			eng.Start(ctx)
			eng.Wait()
			if events != nil {
				close(events)
				eventsWg.Wait()
			}

			writer := ui.NewWriter(os.Stdout, opts.OutputFormat)
			switch opts.OperationMode {
			case config.ModeListFiles, config.ModeCompareToFile:
				writer.WritePaths(eng.Results())
			case config.ModeAllVsAll:
				writer.WriteGroups(eng.GroupedResults())
			}

			if !quiet {
				fmt.Fprintln(os.Stderr, ui.Summary(collector.Snapshot()))
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().
		StringSliceVarP(&directories, "directories", "d", nil, "directories to process (repeatable)")
	rootCmd.Flags().
		StringSliceVarP(&filenames, "filenames", "f", nil, "filename patterns to match, full-match regex over the basename (repeatable)")
	rootCmd.Flags().
		BoolVar(&matchFilenames, "match-filenames", false, "match files based on their filenames")
	rootCmd.Flags().BoolVar(&matchSize, "match-size", false, "match files based on their size")
	rootCmd.Flags().
		StringVar(&matchHashStr, "match-hash", "", "compare files by hashing the first or last bytes (first|last)")
	rootCmd.Flags().
		StringVar(&hashSizeStr, "hash-size", "4K", "chunk size for --match-hash (e.g. 2K, 1M, 0x1000)")
	rootCmd.Flags().
		StringVar(&compareContentStr, "compare-content", "", "content comparison mode (full|begin|end|find)")
	rootCmd.Flags().
		StringVar(&compareTo, "compare-to", "", "compare files against the given file's content")
	rootCmd.Flags().
		StringVar(&setJoker, "set-joker", "", "hexadecimal byte pattern to ignore during comparison (e.g. 0x000000FF, high-order bytes first)")
	rootCmd.Flags().
		BoolVar(&compareEverything, "compare-everything", false, "compare each file against every other file")
	rootCmd.Flags().
		StringVar(&outputFormatStr, "output-format", "pipe", "output format (pipe|tsv|grouped)")
	rootCmd.Flags().
		IntVarP(&workers, "workers", "n", 0, "worker goroutines per pipeline stage (default: NumCPU/3, at least 1)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except results and errors")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// buildOptions translates raw flag values into a config.Options, resolving
// the operation mode and parsing the enumerated values.
func buildOptions(
	directories, filenames []string,
	matchFilenames, matchSize bool,
	matchHashStr, hashSizeStr string,
	compareContentStr, compareTo, setJoker string,
	compareEverything bool,
	outputFormatStr string,
) (*config.Options, error) {
	if compareEverything && compareTo != "" {
		return nil, errors.New("invalid combination of options: --compare-everything and --compare-to cannot be used together")
	}

	opts := &config.Options{
		Directories:      directories,
		FilenamePatterns: filenames,
		MatchFilename:    matchFilenames,
		MatchSize:        matchSize,
		CompareToFile:    compareTo,
		HashSize:         config.DefaultHashSize,
	}

	switch {
	case compareEverything:
		opts.OperationMode = config.ModeAllVsAll
	case compareTo != "":
		opts.OperationMode = config.ModeCompareToFile
	default:
		opts.OperationMode = config.ModeListFiles
	}

	if compareContentStr != "" {
		mc, err := config.ParseMatchContent(compareContentStr)
		if err != nil {
			return nil, err
		}
		opts.MatchContent = mc
	}

	if matchHashStr != "" {
		hm, err := config.ParseHashMode(matchHashStr)
		if err != nil {
			return nil, err
		}
		opts.HashMode = hm

		size, err := filter.ParseSize(hashSizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --hash-size: %w", err)
		}
		opts.HashSize = size
	}

	if setJoker != "" {
		joker, err := filter.ParseHexBytes(setJoker)
		if err != nil {
			return nil, fmt.Errorf("invalid --set-joker: %w", err)
		}
		opts.JokerBytes = joker
	}

	format, err := config.ParseOutputFormat(outputFormatStr)
	if err != nil {
		return nil, err
	}
	opts.OutputFormat = format

	return opts, nil
}
