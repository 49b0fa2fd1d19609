package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/chunkgrep/internal/config"
	"github.com/dshills/chunkgrep/internal/logging"
	"github.com/dshills/chunkgrep/internal/output"
	"github.com/dshills/chunkgrep/internal/searcher"
	"github.com/dshills/chunkgrep/internal/walker"
	"github.com/dshills/chunkgrep/pkg/types"
)

// Version is injected at build time via -ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes
const (
	ExitClean    = 0 // Search completed, every file searched
	ExitWarnings = 1 // Search completed, some files skipped or partly searched
	ExitFailed   = 2 // Search did not start or was interrupted
)

// searchFlags holds the raw flag values of the root command
type searchFlags struct {
	configPath  string
	ignoreCase  bool
	parallelism int
	chunkSize   int
	queue       int
	action      string
	color       string
	logLevel    string
	stats       bool
	skipHidden  bool
	excludeDirs []string
}

// runState carries the outcome of a search out of cobra's RunE
type runState struct {
	summary *types.Summary
}

// NewRootCommand creates and returns the root cobra command for chunkgrep
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *runState) {
	flags := &searchFlags{}
	state := &runState{}

	cmd := &cobra.Command{
		Use:   "chunkgrep [flags] PATTERN PATH",
		Short: "Parallel literal text search",
		Long: `chunkgrep reports the lines of a file, or of every file under a
directory, that contain a literal pattern.

Files are read in chunks of lines that a pool of workers searches in
parallel. Output is always in path order and line order, whatever the
parallelism. Files that cannot be read are reported as warnings and the
search carries on.

Exit code: 0 if every file was searched, 1 if some files were skipped,
2 if the search could not run or was interrupted`,
		Version: Version,
		Args:    cobra.ExactArgs(2),
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := runSearch(cmd, flags, args[0], args[1])
			state.summary = summary
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "config file (default $CHUNKGREP_CONFIG or the user config dir)")
	f.BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "match using Unicode case folding")
	f.IntVarP(&flags.parallelism, "parallelism", "j", types.DefaultParallelism, "number of matching workers")
	f.IntVarP(&flags.chunkSize, "chunk-size", "c", types.DefaultChunkSize, "lines per chunk")
	f.IntVar(&flags.queue, "queue", 0, "work queue capacity (0 = parallelism)")
	f.StringVarP(&flags.action, "action", "a", config.ActionPrint, "output: print, file or boolean")
	f.StringVar(&flags.color, "color", config.ColorAuto, "highlighting: auto, always or never")
	f.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.BoolVar(&flags.stats, "stats", false, "print a summary line to stderr")
	f.BoolVar(&flags.skipHidden, "hidden-skip", false, "skip hidden files and directories")
	f.StringSliceVar(&flags.excludeDirs, "exclude-dir", nil, "directory name to skip (repeatable)")

	// PATTERN may be any word, so cobra's own help and completion
	// subcommands must not shadow a search for "help" or "completion"
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{
		Use:    "__help",
		Hidden: true,
		Run: func(c *cobra.Command, args []string) {
			_ = c.Parent().Help()
		},
	})

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd, state
}

// loadConfig reads the config file and applies the flags the user set
func loadConfig(cmd *cobra.Command, flags *searchFlags) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, types.NewError(types.KindConfig, path, err)
	}

	f := cmd.Flags()
	if f.Changed("ignore-case") {
		cfg.IgnoreCase = flags.ignoreCase
	}
	if f.Changed("parallelism") {
		cfg.Parallelism = flags.parallelism
	}
	if f.Changed("chunk-size") {
		cfg.ChunkSize = flags.chunkSize
	}
	if f.Changed("queue") {
		cfg.QueueCapacity = flags.queue
	}
	if f.Changed("action") {
		cfg.Action = flags.action
	}
	if f.Changed("color") {
		cfg.Color = flags.color
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("hidden-skip") {
		cfg.SkipHidden = flags.skipHidden
	}
	if f.Changed("exclude-dir") {
		cfg.ExcludeDirs = flags.excludeDirs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, flags *searchFlags, pattern, root string) (*types.Summary, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	stdout := cmd.OutOrStdout()
	var colorOut *os.File
	if f, ok := stdout.(*os.File); ok {
		colorOut = f
	}

	info, statErr := os.Stat(root)
	printer := output.New(stdout, cmd.ErrOrStderr(), output.Options{
		Action:     cfg.Action,
		Color:      output.UseColor(cfg.Color, colorOut),
		OmitPath:   statErr == nil && !info.IsDir(),
		Pattern:    pattern,
		IgnoreCase: cfg.IgnoreCase,
	})

	s := searcher.New(logger, searcher.WithWalkOptions(walker.Options{
		SkipHidden:  cfg.SkipHidden,
		ExcludeDirs: cfg.ExcludeDirs,
	}))

	summary, err := s.Search(cmd.Context(), cfg.SearchConfig(pattern, root), printer)
	if err != nil {
		// No answer for a search that did not complete
		_ = printer.Flush()
	} else if finishErr := printer.Finish(); finishErr != nil {
		err = fmt.Errorf("failed to write results: %w", finishErr)
	}
	if flags.stats && summary != nil {
		printer.Summary(*summary)
	}
	return summary, err
}

// ExitCode maps the outcome of a run to the process exit code
func ExitCode(err error, summary *types.Summary) int {
	if err != nil {
		return ExitFailed
	}
	if summary != nil && summary.Status == types.StatusWarnings {
		return ExitWarnings
	}
	return ExitClean
}

// Execute runs chunkgrep with args and returns the exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, state := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "chunkgrep: interrupted")
		} else {
			fmt.Fprintf(stderr, "chunkgrep: %v\n", err)
		}
	}
	return ExitCode(err, state.summary)
}
