package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"wireschema/internal/analyze"
	"wireschema/internal/diagnostic"
	"wireschema/pins"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Pin and inspect wire schema subtype tags",
	Long: appName + " pins the subtype tags of schema hierarchies ahead of time.\n\n" +
		"Derived types are found by their `schema:\",base\"` embedded field.",
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// discover loads patterns and returns their (base, derived) relations.
// Warnings are logged; error diagnostics fail the command.
func discover(logger *slog.Logger, dir string, patterns []string) ([]pins.Pair, error) {
	graph, err := analyze.NewAnalyzer().WithDir(dir).LoadPackages(patterns...)
	if err != nil {
		return nil, err
	}

	pairs, diags := graph.Hierarchy()
	logDiagnostics(logger, diags)

	if err := diags.Error(); err != nil {
		return nil, fmt.Errorf("invalid hierarchy: %w", err)
	}

	logger.Debug("discovered subtypes", "packages", len(graph.Packages), "pairs", len(pairs))

	return pairs, nil
}

func logDiagnostics(logger *slog.Logger, diags *diagnostic.Diagnostics) {
	for _, d := range diags.Warnings {
		logger.Warn(d.Message, "code", d.Code, "subject", d.Subject, "path", d.Path)
	}

	for _, d := range diags.Infos {
		logger.Info(d.Message, "code", d.Code, "subject", d.Subject, "path", d.Path)
	}
}
