package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zoobzio/tidyduck"
)

// NewRowsCommand creates the rows command.
func NewRowsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rows <spec>",
		Short: "Print the filtered rows",
		Long: `Print the rows that match a spec. When the spec sets a limit only that
many rows are returned.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRows(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	var h *tidyduck.Rows[tidyduck.Row]
	if s.spec.Limit > 0 {
		h = s.query.Head(s.spec.Limit)
	} else {
		h = s.query.Rows()
	}
	if err := s.refresh(cmd, h); err != nil {
		return err
	}
	s.formatter.VerboseLog("%s (%s)", h.SQL(), h.QueryTime())

	rows := h.Rows()
	return s.formatter.Success(rows, func(w io.Writer) error {
		return writeTable(w, rows)
	})
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <spec> [columns...]",
		Short: "Count the filtered rows",
		Long: `Count the rows that match a spec. With columns, count each combination
of their values, most frequent first.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runCount(opts *RootOptions, path string, cols []string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(cols) == 0 {
		h := s.query.Count()
		if err := s.refresh(cmd, h); err != nil {
			return err
		}
		n := h.Value()
		return s.formatter.Success(map[string]int64{"n": n}, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, tidyduck.FormatNum(n))
			return err
		})
	}

	h := s.query.CountBy(cols...)
	if err := s.refresh(cmd, h); err != nil {
		return err
	}
	rows := h.Rows()
	return s.formatter.Success(rows, func(w io.Writer) error {
		return writeTable(w, rows)
	})
}

// NewDistinctCommand creates the distinct command.
func NewDistinctCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "distinct <spec> <column>",
		Short:         "List the distinct values of a column",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDistinct(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDistinct(opts *RootOptions, path, col string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	h := s.query.Distinct(col)
	if err := s.refresh(cmd, h); err != nil {
		return err
	}
	items := h.Items()
	return s.formatter.Success(items, func(w io.Writer) error {
		for _, item := range items {
			if _, err := fmt.Fprintln(w, tidyduck.FormatSample(item)); err != nil {
				return err
			}
		}
		return nil
	})
}
