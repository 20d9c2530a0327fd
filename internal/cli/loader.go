package cli

import (
	"github.com/spf13/cobra"

	"github.com/zoobzio/tidyduck"
)

// session is what a command needs to run a spec: the spec, the builder it
// produced and, for commands that execute, an open engine.
type session struct {
	spec      tidyduck.QuerySpec
	query     *tidyduck.Query
	engine    *tidyduck.Engine
	formatter *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession loads the spec at path and, when connect is set, opens the
// engine the builder is bound to. Failures are reported through the formatter.
func openSession(opts *RootOptions, cmd *cobra.Command, path string, connect bool) (*session, error) {
	formatter := newFormatter(opts, cmd)

	spec, err := tidyduck.LoadQuerySpec(path)
	if err != nil {
		return nil, formatter.Error(ExitCommandError, ErrCodeSpec, "loading spec", err)
	}
	formatter.VerboseLog("Loaded spec %s: from %s, %d filter(s)", path, spec.From, len(spec.Filters))

	var engine *tidyduck.Engine
	if connect {
		engine, err = tidyduck.Open(opts.Driver, opts.DSN)
		if err != nil {
			return nil, formatter.Error(ExitCommandError, ErrCodeConnect, "connecting to "+opts.Driver, err)
		}
		formatter.VerboseLog("Connected with driver %s", opts.Driver)
	}

	query, err := spec.Build(engine)
	if err != nil {
		_ = engine.Close()
		return nil, formatter.Error(ExitCommandError, ErrCodeSpec, "building query", err)
	}

	return &session{spec: spec, query: query, engine: engine, formatter: formatter}, nil
}

func (s *session) Close() {
	_ = s.engine.Close()
}

// refresh runs a handle and reports a failure through the formatter.
func (s *session) refresh(cmd *cobra.Command, r tidyduck.Refresher) error {
	if err := r.Refresh(cmd.Context()); err != nil {
		return s.formatter.Error(ExitFailure, ErrCodeQuery, "query failed", err)
	}
	return nil
}
