// Package cli implements the tidyduck command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml" | "toml" | "cue" | "msgpack"
	Driver  string
	DSN     string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml", "toml", "cue", "msgpack"}

// NewRootCommand creates the root command for the tidyduck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tidyduck",
		Short: "tidyduck - filtered queries over DuckDB relations",
		Long: `Build filtered SQL from a query spec file and run it.

A spec names a relation and a list of filters (between, in, ilike, eq, raw,
or, and). Spec files may be JSON, YAML, TOML, CUE or MessagePack.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml|toml|cue|msgpack)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "duckdb", "database/sql driver name")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "data source name (empty opens an in-memory DuckDB)")

	// Add subcommands
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewRowsCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewDistinctCommand(opts))
	cmd.AddCommand(NewGlimpseCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}
