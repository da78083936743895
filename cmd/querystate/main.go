package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/querystate/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐ ┬ ┬┌─┐┬─┐┬ ┬┌─┐┌┬┐┌─┐┌┬┐┌─┐
  │─┼┐│ │├┤ ├┬┘└┬┘└─┐ │ ├─┤ │ ├┤
  └─┘└└─┘└─┘┴└─ ┴ └─┘ ┴ ┴ ┴ ┴ └─┘
`

// verbose enables debug logging for every command.
var verbose bool

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "querystate",
		Short: "Synchronize typed state with URL query strings",
		Long: `querystate maps browser-style locations to typed state and back.

  • read:  decode a URL into typed state
  • write: encode state into a URL, preserving unrelated parameters
  • serve: mirror connected browsers' history over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		readCmd(),
		writeCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// newLogger returns the logger used by commands. Logs go to stderr so
// command output stays machine readable.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
