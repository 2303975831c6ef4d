// cmd/caabctl/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"caab-workers/internal/common/logger"
	"caab-workers/internal/lookup"

	"github.com/spf13/cobra"
)

// cli carries what the persistent flags build before any subcommand runs.
type cli struct {
	lookupFile string
	logLevel   string

	log      logger.Logger
	resolver lookup.Resolver
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "caabctl",
		Short:         "Map, project and submit legal-aid case data offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.lookupFile, "lookup", "", "static reference-data file; unknown codes pass through raw when unset")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "debug, info, warn, error or off")

	root.AddCommand(
		newMapCmd(c),
		newProjectCmd(c),
		newReverseCmd(c),
		newRegistryCmd(),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	if c.logLevel == "off" {
		c.log = logger.NewNop()
	} else {
		zapLog, err := logger.New(logger.Options{Level: c.logLevel, Format: "console", Outputs: []string{"stderr"}})
		if err != nil {
			return err
		}
		c.log = logger.Wrap(zapLog)
	}

	if c.lookupFile == "" {
		c.resolver = lookup.NewStatic(lookup.Dataset{})
		return nil
	}
	s, err := lookup.LoadStatic(c.lookupFile)
	if err != nil {
		return err
	}
	c.resolver = s
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func readJSON(cmd *cobra.Command, path string, v interface{}) error {
	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "caabctl:", err)
		os.Exit(1)
	}
}
