package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// ParseLogLevel converts a string log level to slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

func getLogLevel() slog.Level {
	level := logLevel
	if level == "" {
		level = os.Getenv("NORMAPROC_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	parsed, err := ParseLogLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
		return slog.LevelInfo
	}
	return parsed
}

var rootCmd = &cobra.Command{
	Use:   "docstructctl",
	Short: "Standalone driver for the document structure extraction engine",
	Long: `docstructctl renders a .docx package into an HTML or JSON structural
export without going through the HTTP API, for local debugging and batch
conversion.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./docstruct.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env: NORMAPROC_LOG_LEVEL)")
	rootCmd.AddCommand(renderCmd)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: getLogLevel()})))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
