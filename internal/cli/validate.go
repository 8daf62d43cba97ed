package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	World  string `json:"world"`
	Source string `json:"source"`
	Values int    `json:"values"`
	Root   string `json:"root,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <world>",
		Short: "Check that a world document loads",
		Long: `Load a world document (YAML, JSON, a .cue file or a CUE package
directory) and report declaration, description and value errors.

Exit codes:
  0 - World is valid
  1 - World has errors
  2 - World not found`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, args[0], "")
			if err != nil {
				return err
			}
			w := s.in.World()
			result := ValidationResult{
				Valid:  true,
				World:  w.Name,
				Source: w.Source,
				Values: len(w.Names()),
				Root:   w.Root,
			}
			return s.out.Success(result, func(out io.Writer) {
				fmt.Fprintf(out, "✓ %s is valid (%d values", w.Source, result.Values)
				if result.Root != "" {
					fmt.Fprintf(out, ", root %s", result.Root)
				}
				fmt.Fprintln(out, ")")
			})
		},
	}

	return cmd
}
