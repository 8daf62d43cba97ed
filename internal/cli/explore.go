package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/inspect"
	"github.com/roach88/mirror/internal/mirror"
	"github.com/roach88/mirror/internal/quicklook"
)

const historyFile = ".mirror_history"

const exploreHelp = `commands:
  ls [path]          list values, or the children of the current node
  cd <path>          move to a child path; ".." goes up, "/" to the top
  pwd                print the current reference
  dump [path]        dump the tree below the current node
  ancestors [path]   list ancestor mirrors, nearest first
  quicklook [path]   show the quick-look preview
  depth <n>          set the dump depth (negative for all)
  help               show this help
  quit               leave`

// NewExploreCommand creates the explore command.
func NewExploreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explore <world> [ref]",
		Short: "Walk a world's mirrors interactively",
		Long: `Open an interactive prompt over a world. Navigate with cd and ls the
way you would a directory tree; children are addressed by label or index.

` + exploreHelp,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], "")
			if err != nil {
				return err
			}
			e := newExplorer(s.in, cmd.OutOrStdout())
			if ref := refArg(args, 1); ref != "" {
				if !e.exec("cd /" + ref) {
					return NewExitError(ExitCommandError, "cannot start at "+ref)
				}
			}
			return e.repl()
		},
	}
}

// explorer holds the state of an interactive session. exec is the whole
// command language; repl only feeds it lines.
type explorer struct {
	in    *inspect.Inspector
	out   io.Writer
	cwd   inspect.Ref // zero at the top, above all values
	depth int
	quit  bool
}

func newExplorer(in *inspect.Inspector, out io.Writer) *explorer {
	return &explorer{in: in, out: out, depth: inspect.DefaultDepth}
}

func (e *explorer) prompt() string {
	if e.cwd.Value == "" {
		return "mirror> "
	}
	return "mirror:" + e.cwd.String() + "> "
}

// exec runs one command line and reports whether it succeeded.
func (e *explorer) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, arg := fields[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	var err error
	switch cmd {
	case "ls":
		err = e.ls(arg)
	case "cd":
		err = e.cd(arg)
	case "pwd":
		if e.cwd.Value == "" {
			fmt.Fprintln(e.out, "/")
		} else {
			fmt.Fprintln(e.out, e.cwd.String())
		}
	case "dump":
		err = e.dump(arg)
	case "ancestors":
		err = e.ancestors(arg)
	case "quicklook", "ql":
		err = e.quickLook(arg)
	case "depth":
		var n int
		if n, err = strconv.Atoi(arg); err == nil {
			e.depth = n
		}
	case "help", "?":
		fmt.Fprintln(e.out, exploreHelp)
	case "quit", "exit":
		e.quit = true
	default:
		err = fmt.Errorf("unknown command %q (try help)", cmd)
	}
	if err != nil {
		fmt.Fprintf(e.out, "error: %v\n", err)
		return false
	}
	return true
}

// target resolves arg against the current location. A leading "/" makes
// it absolute; an empty arg is the current location.
func (e *explorer) target(arg string) (inspect.Ref, error) {
	switch {
	case arg == "":
		if e.cwd.Value == "" {
			return inspect.Ref{}, errors.New("no value selected (cd into one first)")
		}
		return e.cwd, nil
	case arg == "..":
		if len(e.cwd.Path) == 0 {
			return inspect.Ref{}, nil
		}
		return inspect.Ref{Value: e.cwd.Value, Path: e.cwd.Path[:len(e.cwd.Path)-1]}, nil
	case strings.HasPrefix(arg, "/"), e.cwd.Value == "":
		return inspect.ParseRef(strings.TrimPrefix(arg, "/"))
	}
	sels, err := parseRelative(arg)
	if err != nil {
		return inspect.Ref{}, err
	}
	return inspect.Ref{Value: e.cwd.Value, Path: append(slices.Clone(e.cwd.Path), sels...)}, nil
}

// parseRelative parses a path below the current node. A bare number is an
// index.
func parseRelative(arg string) ([]mirror.Selector, error) {
	if n, err := strconv.Atoi(arg); err == nil && n >= 0 {
		return []mirror.Selector{mirror.Index(n)}, nil
	}
	sels, err := mirror.ParsePath(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", inspect.ErrBadRef, err)
	}
	return sels, nil
}

func (e *explorer) cd(arg string) error {
	if arg == "" || arg == "/" {
		e.cwd = inspect.Ref{}
		return nil
	}
	ref, err := e.target(arg)
	if err != nil {
		return err
	}
	if ref.Value != "" {
		if _, err := e.in.Resolve(ref.String()); err != nil {
			return err
		}
	}
	e.cwd = ref
	return nil
}

func (e *explorer) ls(arg string) error {
	if arg == "" && e.cwd.Value == "" {
		for _, v := range e.in.Values() {
			fmt.Fprintf(e.out, "%s  %s  %s\n", v.Name, v.Type, v.Summary)
		}
		return nil
	}
	ref, err := e.target(arg)
	if err != nil {
		return err
	}
	n, err := e.in.Reflect(ref.String(), 1)
	if err != nil {
		return err
	}
	if n.Ancestor != nil {
		fmt.Fprintf(e.out, "   ^  super: %s\n", n.Ancestor.SubjectType)
	}
	for i, c := range n.Children {
		if c.Labeled {
			fmt.Fprintf(e.out, "%4d  %s: %s\n", i, c.Label, c.Node.Summary)
		} else {
			fmt.Fprintf(e.out, "%4d  %s\n", i, c.Node.Summary)
		}
	}
	return nil
}

func (e *explorer) dump(arg string) error {
	ref, err := e.target(arg)
	if err != nil {
		return err
	}
	var opts []mirror.DumpOption
	if e.depth >= 0 {
		opts = append(opts, mirror.WithMaxDepth(e.depth))
	}
	var buf bytes.Buffer
	if err := e.in.Dump(&buf, ref.String(), opts...); err != nil {
		return err
	}
	_, err = buf.WriteTo(e.out)
	return err
}

func (e *explorer) ancestors(arg string) error {
	ref, err := e.target(arg)
	if err != nil {
		return err
	}
	chain, err := e.in.Ancestors(ref.String())
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		fmt.Fprintln(e.out, "no ancestors")
	}
	for i, n := range chain {
		fmt.Fprintf(e.out, "%d. %s (%s)\n", i+1, n.SubjectType, n.Ancestry)
	}
	return nil
}

func (e *explorer) quickLook(arg string) error {
	ref, err := e.target(arg)
	if err != nil {
		return err
	}
	ql, err := e.in.QuickLook(ref.String())
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, quicklook.String(ql))
	return nil
}

var exploreCommands = []string{"ancestors", "cd", "depth", "dump", "exit", "help", "ls", "pwd", "quicklook", "quit"}

// complete offers command names, then child labels or value names.
func (e *explorer) complete(line string) []string {
	cmd, prefix, hasArg := strings.Cut(line, " ")
	if !hasArg {
		var out []string
		for _, c := range exploreCommands {
			if strings.HasPrefix(c, cmd) {
				out = append(out, c)
			}
		}
		return out
	}

	var names []string
	if e.cwd.Value == "" {
		for _, v := range e.in.Values() {
			names = append(names, v.Name)
		}
	} else if n, err := e.in.Reflect(e.cwd.String(), 1); err == nil {
		for i, c := range n.Children {
			if c.Labeled {
				names = append(names, c.Label)
			} else {
				names = append(names, strconv.Itoa(i))
			}
		}
	}
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, cmd+" "+name)
		}
	}
	return out
}

// repl runs the interactive loop until quit, EOF or Ctrl-C.
func (e *explorer) repl() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(e.complete)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(e.out, "type help for commands")
	for !e.quit {
		line, err := ln.Prompt(e.prompt())
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(e.out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		e.exec(line)
	}
	return nil
}
