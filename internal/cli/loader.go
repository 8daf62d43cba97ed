package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/inspect"
	"github.com/roach88/mirror/internal/model"
	"github.com/roach88/mirror/internal/store"
)

// DefaultDB is the snapshot database used when --db is not given.
const DefaultDB = "mirror.db"

// session is what a command works against: an inspector over a loaded
// world and, when the command persists snapshots, the open store.
type session struct {
	in    *inspect.Inspector
	store *store.Store
	out   *OutputFormatter
}

// Close releases the store, if any.
func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// openSession loads the world at path and builds an inspector over it.
// A non-empty db also opens the snapshot store. Failures are reported
// through the formatter and returned as an *ExitError.
func openSession(opts *RootOptions, cmd *cobra.Command, path, db string) (*session, error) {
	out := opts.formatter(cmd)
	logger := opts.logger(cmd)

	w, err := model.Load(path, model.WithLogger(logger))
	if err != nil {
		return nil, out.Fail(err)
	}
	logger.Debug("world loaded", "world", w.Name, "source", w.Source, "values", len(w.Names()))

	s := &session{out: out}
	inOpts := []inspect.Option{inspect.WithLogger(logger)}
	if db != "" {
		st, err := store.Open(db)
		if err != nil {
			out.Error(ErrCodeStore, err.Error(), map[string]string{"db": db})
			return nil, WrapExitError(ExitCommandError, "opening snapshot store", err)
		}
		s.store = st
		inOpts = append(inOpts, inspect.WithStore(st))
	}
	s.in = inspect.New(w, inOpts...)
	return s, nil
}

// refArg returns the optional reference argument at index i.
func refArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
