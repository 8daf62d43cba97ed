package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/inspect"
	"github.com/roach88/mirror/internal/mirror"
	"github.com/roach88/mirror/internal/quicklook"
)

const refHelp = `A reference is a value name followed by an optional path, in slash
form (canvas/shapes/0) or dotted form (canvas.shapes[0]). Quote a segment
to force a literal label: canvas/'0'. An empty reference names the root.`

// NewValuesCommand creates the values command.
func NewValuesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "values <world>",
		Short:         "List the named values of a world",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], "")
			if err != nil {
				return err
			}
			values := s.in.Values()
			return s.out.Success(values, func(out io.Writer) {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, v := range values {
					marker := ""
					if v.Root {
						marker = " (root)"
					}
					fmt.Fprintf(tw, "%s%s\t%s\t%s\n", v.Name, marker, v.Type, v.Summary)
				}
				tw.Flush()
			})
		},
	}
}

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Depth    int
	MaxItems int
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <world> [ref]",
		Short: "Show the mirror tree of a value",
		Long: `Show the mirror tree of a value: its children, display hints and
ancestor chain. Text output is an indented dump; JSON output is the
materialized node.

` + refHelp,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], "")
			if err != nil {
				return err
			}
			ref := refArg(args, 1)
			if opts.Format == "json" {
				node, err := s.in.Reflect(ref, opts.Depth)
				if err != nil {
					return s.out.Fail(err)
				}
				return s.out.Success(node, nil)
			}
			dumpOpts := []mirror.DumpOption{}
			if opts.Depth >= 0 {
				dumpOpts = append(dumpOpts, mirror.WithMaxDepth(opts.Depth))
			}
			if opts.MaxItems > 0 {
				dumpOpts = append(dumpOpts, mirror.WithMaxItems(opts.MaxItems))
			}
			var buf bytes.Buffer
			if err := s.in.Dump(&buf, ref, dumpOpts...); err != nil {
				return s.out.Fail(err)
			}
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", inspect.DefaultDepth, "levels to expand; negative for all")
	cmd.Flags().IntVar(&opts.MaxItems, "max-items", 0, "stop after this many lines (text only)")

	return cmd
}

// NewDescendCommand creates the descend command.
func NewDescendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "descend <world> <ref>",
		Short: "Follow a path to a descendant",
		Long: `Follow a path from a named value through its mirrors' children.

Exit codes:
  0 - Descendant found
  1 - No descendant at the path
  2 - Bad reference or unknown value

` + refHelp,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], "")
			if err != nil {
				return err
			}
			found, err := s.in.Descend(args[1])
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(found, func(out io.Writer) {
				fmt.Fprintf(out, "%s: %s\n", found.Ref, found.Summary)
				fmt.Fprintf(out, "  type:     %s\n", found.SubjectType)
				if found.Display != "" {
					fmt.Fprintf(out, "  display:  %s\n", found.Display)
				}
				fmt.Fprintf(out, "  children: %d\n", found.Children)
			})
		},
	}
}

// NewAncestorsCommand creates the ancestors command.
func NewAncestorsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ancestors <world> [ref]",
		Short:         "List the ancestor mirrors of a value, nearest first",
		Long:          "List the ancestor mirrors of a value, nearest first.\n\n" + refHelp,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], "")
			if err != nil {
				return err
			}
			chain, err := s.in.Ancestors(refArg(args, 1))
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(chain, func(out io.Writer) {
				if len(chain) == 0 {
					fmt.Fprintln(out, "no ancestors")
					return
				}
				for i, n := range chain {
					fmt.Fprintf(out, "%d. %s (%s, %d children)\n", i+1, n.SubjectType, n.Ancestry, len(n.Children))
				}
			})
		},
	}
}

// NewQuickLookCommand creates the quicklook command.
func NewQuickLookCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "quicklook <world> [ref]",
		Short:         "Show the quick-look preview of a value",
		Long:          "Show the quick-look preview of a value.\n\n" + refHelp,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], "")
			if err != nil {
				return err
			}
			ql, err := s.in.QuickLook(refArg(args, 1))
			if err != nil {
				return s.out.Fail(err)
			}
			var data any
			if ql != nil {
				raw, err := quicklook.Marshal(ql)
				if err != nil {
					return s.out.Fail(err)
				}
				data = json.RawMessage(raw)
			}
			return s.out.Success(data, func(out io.Writer) {
				fmt.Fprintln(out, quicklook.String(ql))
			})
		},
	}
}
