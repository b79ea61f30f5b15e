// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var dossierCmd = &cobra.Command{
	Use:   "dossier NAME RESEARCH.md",
	Short: "Write the dossier for a guest from a research file",
	Long: `Dossier streams a structured Markdown dossier from a research file and the
show context document. With --stream the text is printed while it is
generated. The dossier is saved to <dossier-dir>/<slug>_<YYYY-MM-DD>.md
only after generation completed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stream, _ := cmd.Flags().GetBool("stream")
		out := cmd.OutOrStdout()

		p, _ := newPipeline(cmd.ErrOrStderr())
		path, err := p.CreateDossier(cmd.Context(), args[0], args[1], partialPrinter(out, stream))
		if err != nil {
			return err
		}
		if stream {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", path)
		return nil
	},
}

// partialPrinter returns a callback that prints the new tail of each
// cumulative partial, or nil when streaming is off.
func partialPrinter(w io.Writer, enabled bool) func(string) {
	if !enabled {
		return nil
	}
	var printed int
	return func(partial string) {
		if len(partial) <= printed {
			return
		}
		fmt.Fprint(w, partial[printed:])
		printed = len(partial)
	}
}

func init() {
	dossierCmd.Flags().Bool("stream", false, "print the dossier while it is generated")

	rootCmd.AddCommand(dossierCmd)
}
