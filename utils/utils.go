package utils

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/lmittmann/tint"
)

// Filters elements of a slice by comparing them to the elements of a reference slice.
// formatMsg is an optional format string with a single format argument that can be used
// to add context on why the element may be missing from the reference slice
func FilterSlice[T comparable](slice, reference []T, formatMsg string) []T {
	if slice == nil {
		return reference
	}

	if formatMsg == "" {
		formatMsg = "User input '%v' not present in reference, skipping"
	}

	out := make([]T, 0, len(slice))
	for _, s := range slice {
		if !slices.Contains(reference, s) {
			slog.Warn(fmt.Sprintf(formatMsg, s))
			continue
		}
		out = append(out, s)
	}
	return out
}

// Splits a comma separated list provided via cmd, returns nil for an empty string
func SplitList(cmd string) []string {
	if cmd == "" {
		return nil
	}

	out := strings.Split(cmd, ",")
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

// Same as SplitList, but every element needs to be an integer (e.g. station IDs)
func SplitIntList(cmd string) ([]int, error) {
	list := SplitList(cmd)
	if list == nil {
		return nil, nil
	}

	out := make([]int, 0, len(list))
	for _, s := range list {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid integer: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Sets the default logger. Logs are colored on stderr, unless a log file is given.
// The returned file is nil when logging to stderr
func SetLogger(verbose bool, logfile string) (*os.File, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if logfile == "" {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))
		return nil, nil
	}

	fh, err := os.Create(logfile)
	if err != nil {
		return nil, fmt.Errorf("Could not create log '%s': %w", logfile, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(fh, &slog.HandlerOptions{Level: level})))
	return fh, nil
}
