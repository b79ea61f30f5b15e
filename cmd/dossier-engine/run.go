// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dossier-engine/internal/store"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Research a guest and write the dossier in one go",
	Long: `Run chains research, verification, and dossier synthesis for a guest and
prints a timing summary. With --interactive the guest name is checked
first and, when several people share it, you choose which one is meant.
Every run is recorded in the SQLite run log.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		hint, _ := cmd.Flags().GetString("hint")
		interactive, _ := cmd.Flags().GetBool("interactive")
		stream, _ := cmd.Flags().GetBool("stream")
		out := cmd.OutOrStdout()

		p, cfg := newPipeline(out)
		p.Artifacts = store.NewArtifacts()
		closeRuns := withRunLog(p, cfg)
		defer closeRuns()

		cand := types.Candidate{Name: name, ContextHint: hint}
		if interactive {
			d, err := p.Identify(cmd.Context(), name)
			if err != nil {
				return err
			}
			cand, err = selectCandidate(cmd.InOrStdin(), out, d)
			if err != nil {
				return err
			}
			if hint != "" {
				cand.ContextHint = hint
			}
		}

		sum, err := p.Run(cmd.Context(), cand, partialPrinter(out, stream))
		printArtifact(out, p.Artifacts, sum.Run.Slug)
		return err
	},
}

// printArtifact reports what the run left behind for slug, including the
// research of a run whose dossier step failed.
func printArtifact(w io.Writer, arts *store.Artifacts, slug string) {
	art, ok := arts.Get(slug)
	if !ok {
		return
	}
	if art.Verification != "" {
		fmt.Fprintf(w, "  Verifikation: %s\n", art.Verification)
	}
	if art.RawPath != "" {
		fmt.Fprintf(w, "  Rohdaten:  %s\n", art.RawPath)
	}
	if art.ResearchPath != "" && art.DossierPath == "" {
		fmt.Fprintf(w, "  Research bleibt erhalten: %s\n", art.ResearchPath)
	}
}

func init() {
	runCmd.Flags().String("hint", "", "context hint separating the guest from namesakes")
	runCmd.Flags().BoolP("interactive", "i", false, "check the name first and choose among namesakes")
	runCmd.Flags().Bool("stream", false, "print the dossier while it is generated")

	rootCmd.AddCommand(runCmd)
}
