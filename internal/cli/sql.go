package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SQLResult holds the statements a spec renders to.
type SQLResult struct {
	Where    string `json:"where" yaml:"where"`
	Rows     string `json:"rows" yaml:"rows"`
	Count    string `json:"count" yaml:"count"`
	Describe string `json:"describe" yaml:"describe"`
	Columns  string `json:"columns" yaml:"columns"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <spec>",
		Short: "Print the SQL a spec renders to",
		Long: `Print the WHERE clause and the statements a spec renders to,
without connecting to a database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSQL(opts *RootOptions, path string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, path, false)
	if err != nil {
		return err
	}

	q := s.query
	result := SQLResult{
		Where:    q.WhereSQL(),
		Rows:     q.RowsSQL(),
		Count:    q.CountSQL(),
		Describe: q.DescribeSQL(),
		Columns:  q.ColumnsSQL(),
	}
	if s.spec.Limit > 0 {
		result.Rows = q.HeadSQL(s.spec.Limit)
	}

	return s.formatter.Success(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "where:    %s\nrows:     %s\ncount:    %s\ndescribe: %s\ncolumns:  %s\n",
			result.Where, result.Rows, result.Count, result.Describe, result.Columns)
		return err
	})
}
