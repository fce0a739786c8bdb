package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/geomichelon/vtsdk/internal/engine"
	"github.com/geomichelon/vtsdk/internal/vision"
)

// globalOptions holds the flags shared by every command.
type globalOptions struct {
	logLevel    string
	backend     string
	artifactDir string
	logOutput   io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{logOutput: os.Stderr}

	root := &cobra.Command{
		Use:   "vtsdk",
		Short: "Visual regression comparisons for UI tests",
		Long: `vtsdk compares a baseline screenshot against a new one, reports a
similarity score with an optional pass/fail verdict, and writes a diff image.
Rectangular regions can be excluded from scoring.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(opts.logLevel, opts.logOutput)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.backend, "backend", string(engine.BackendReal), "Comparison backend (real, mock)")
	flags.StringVar(&opts.artifactDir, "artifact-dir", "", "Directory for diff artifacts (default: OS temp dir)")

	root.AddCommand(
		newCompareCmd(opts),
		newSearchCmd(opts),
		newLocateCmd(opts),
		newServeCmd(opts),
		newRunsCmd(),
		newVersionCmd(),
	)
	return root
}

// setupLogger installs a JSON slog handler as the default logger. Logs go to
// stderr so command output on stdout stays machine readable.
func setupLogger(logLevel string, w io.Writer) {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func (o *globalOptions) newEngine() (engine.Engine, error) {
	e, err := engine.New(o.backend, vision.WithArtifactDir(o.artifactDir))
	if err != nil {
		return nil, fmt.Errorf("invalid --backend: %w", err)
	}
	return e, nil
}
