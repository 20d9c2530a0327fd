package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zoobzio/tidyduck"
)

// GlimpseResult is the structured form of a glimpse.
type GlimpseResult struct {
	Rows    int64                    `json:"rows" yaml:"rows"`
	Columns []tidyduck.GlimpseColumn `json:"columns" yaml:"columns"`
}

// NewGlimpseCommand creates the glimpse command.
func NewGlimpseCommand(rootOpts *RootOptions) *cobra.Command {
	var sample int

	cmd := &cobra.Command{
		Use:   "glimpse <spec>",
		Short: "Show columns, types and sample values",
		Long: `Show every column of the relation with its type and a few sample values
from the filtered rows, in the layout of R's glimpse(). Requires DuckDB.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGlimpse(rootOpts, args[0], sample, cmd)
		},
	}

	cmd.Flags().IntVarP(&sample, "sample", "n", tidyduck.DefaultSampleSize, "number of sample rows")

	return cmd
}

func runGlimpse(opts *RootOptions, path string, sample int, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	g := s.query.Glimpse(sample)
	if err := s.refresh(cmd, g); err != nil {
		return err
	}

	result := GlimpseResult{Rows: g.NRows(), Columns: g.Columns()}
	return s.formatter.Success(result, func(w io.Writer) error {
		return tidyduck.WriteGlimpse(w, result.Rows, result.Columns)
	})
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "describe <spec>",
		Short:         "Summarize every column of the filtered rows",
		Long:          `Print per-column statistics of the filtered rows using SUMMARIZE. Requires DuckDB.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	h := s.query.Describe()
	if err := s.refresh(cmd, h); err != nil {
		return err
	}

	summaries := h.Rows()
	return s.formatter.Success(summaries, func(w io.Writer) error {
		for _, c := range summaries {
			if _, err := fmt.Fprintf(w, "%s <%s> min=%s max=%s unique=%d nulls=%s%%\n",
				c.ColumnName, tidyduck.TypeLabel(c.ColumnType),
				tidyduck.FormatSample(c.Min), tidyduck.FormatSample(c.Max),
				c.ApproxUnique, tidyduck.FormatSample(c.NullPercentage)); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schema <spec>",
		Short:         "Print the relation's columns as DBML",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	g := s.query.Glimpse(1)
	if err := s.refresh(cmd, g); err != nil {
		return err
	}

	project, err := tidyduck.SchemaDBML(s.query.Table(), g.Schema())
	if err != nil {
		return s.formatter.Error(ExitFailure, ErrCodeSchema, "building schema", err)
	}

	generated := project.Generate()
	return s.formatter.Success(map[string]string{"dbml": generated}, func(w io.Writer) error {
		_, err := io.WriteString(w, generated)
		return err
	})
}
