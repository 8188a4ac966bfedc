package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind/internal/config"
	vberrors "github.com/vango-dev/vbind/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		vberrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vbind",
		Short: "Render and preview data-bound templates",
		Long: `vbind renders HTML templates with {{ expression | filter }} bindings
against a data model, organised into nested components with their own
scopes, lifecycle and events.

A project is configured by a vbind.yaml file in the working directory
or one of its parents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the file at path, or searches the working directory and
// its parents when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadFromDir(wd)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
