package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/inspect"
)

// SnapshotOptions holds flags for the snapshot and history commands.
type SnapshotOptions struct {
	*RootOptions
	DB    string
	Depth int
}

// SnapshotSummary is the CLI view of a stored snapshot.
type SnapshotSummary struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Path      string `json:"path"`
	NodeHash  string `json:"node_hash"`
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot <world> [ref...]",
		Short: "Record mirror snapshots into the store",
		Long: `Reflect each referenced value and record the materialized node in the
snapshot store. All snapshots of one invocation share a session.

Examples:
  mirror snapshot shapes.yaml canvas square
  mirror snapshot zoo.cue pack/0 --depth -1 --db zoo.db

` + refHelp,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], opts.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			refs := args[1:]
			if len(refs) == 0 {
				refs = []string{""}
			}
			out := make([]SnapshotSummary, 0, len(refs))
			for _, ref := range refs {
				snap, err := s.in.Record(cmd.Context(), ref, opts.Depth)
				if err != nil {
					return s.out.Fail(err)
				}
				out = append(out, SnapshotSummary{
					ID:        snap.ID,
					SessionID: snap.SessionID,
					Seq:       snap.Seq,
					Path:      snap.Path,
					NodeHash:  snap.NodeHash,
				})
			}
			return s.out.Success(out, func(w io.Writer) {
				sess, _ := s.in.Session()
				fmt.Fprintf(w, "session %s\n", sess.ID)
				writeSnapshots(w, out)
			})
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", DefaultDB, "snapshot database path")
	cmd.Flags().IntVar(&opts.Depth, "depth", inspect.DefaultDepth, "levels to expand; negative for all")

	return cmd
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <world> [ref]",
		Short: "List stored snapshots taken at a path",
		Long: `List every stored snapshot taken at the referenced path, across
sessions, oldest first. Unchanged structure shows as a repeated node hash.

` + refHelp,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], opts.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			history, err := s.in.History(cmd.Context(), refArg(args, 1))
			if err != nil {
				return s.out.Fail(err)
			}
			out := make([]SnapshotSummary, len(history))
			for i, snap := range history {
				out[i] = SnapshotSummary{
					ID:        snap.ID,
					SessionID: snap.SessionID,
					Seq:       snap.Seq,
					Path:      snap.Path,
					NodeHash:  snap.NodeHash,
				}
			}
			return s.out.Success(out, func(w io.Writer) {
				if len(out) == 0 {
					fmt.Fprintln(w, "no snapshots")
					return
				}
				writeSnapshots(w, out)
			})
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", DefaultDB, "snapshot database path")

	return cmd
}

func writeSnapshots(w io.Writer, snaps []SnapshotSummary) {
	for _, s := range snaps {
		fmt.Fprintf(w, "%6d  %s  %s  %s\n", s.Seq, shortHash(s.NodeHash), s.SessionID, s.Path)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
