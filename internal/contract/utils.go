package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color variables for console output.
var (
	SlowerColor = color.New(color.FgRed, color.Bold)   // SlowerColor marks a significant slowdown.
	FasterColor = color.New(color.FgGreen, color.Bold) // FasterColor marks a significant speedup.
	MutedColor  = color.New(color.FgHiBlack)           // MutedColor marks missing comparisons.
)

// ColorDelta returns a colored percent change for console output (table).
// Only significant changes are colored; everything else is returned as is.
func ColorDelta(text string, percent *float64, significant bool) string {
	switch {
	case percent == nil:
		return MutedColor.Sprint(text)
	case !significant:
		return text
	case *percent > 0:
		return SlowerColor.Sprint(text)
	default:
		return FasterColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs a progress message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// GetHistoryFilePath returns the default path of the YAML history log.
func GetHistoryFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".benchtrack_history.yml"
	}
	return filepath.Join(homeDir, ".benchtrack_history.yml")
}

// GetHistoryDBFilePath returns the default path of the SQLite history database.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".benchtrack_history.db"
	}
	return filepath.Join(homeDir, ".benchtrack_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseColorMode resolves the color flag. "auto" enables colors when stdout is a terminal.
func ParseColorMode(s string) (bool, error) {
	if s == "" || strings.EqualFold(s, "auto") {
		return term.IsTerminal(int(os.Stdout.Fd())), nil
	}
	return ParseBoolString(s)
}
