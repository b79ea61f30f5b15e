// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

var identifyCmd = &cobra.Command{
	Use:   "identify NAME",
	Short: "Check who a guest name refers to",
	Long: `Identify searches the web for the guest name and asks a model whether it
refers to one person or several. Every candidate is listed with a context
hint that later research uses to avoid namesakes.

With --select the command asks which candidate is meant and prints only
that one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIdentify,
}

func runIdentify(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	p, _ := newPipeline(cmd.ErrOrStderr())
	d, err := p.Identify(cmd.Context(), name)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	interactive, _ := cmd.Flags().GetBool("select")

	if interactive {
		c, err := selectCandidate(cmd.InOrStdin(), out, d)
		if err != nil {
			return err
		}
		d = types.Disambiguation{Candidates: []types.Candidate{c}}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	if !interactive {
		printCandidates(out, d)
	}
	return nil
}

// printCandidates lists candidates numbered from 1.
func printCandidates(w io.Writer, d types.Disambiguation) {
	if d.IsAmbiguous {
		fmt.Fprintf(w, "Mehrere Personen gefunden (%d):\n", len(d.Candidates))
	} else {
		fmt.Fprintln(w, "Eindeutige Person gefunden:")
	}
	for i, c := range d.Candidates {
		fmt.Fprintf(w, "  %d. %s\n", i+1, c.Name)
		if c.Description != "" {
			fmt.Fprintf(w, "     %s\n", c.Description)
		}
		if c.ContextHint != "" {
			fmt.Fprintf(w, "     Kontext: %s\n", c.ContextHint)
		}
	}
}

// selectCandidate returns the only candidate of an unambiguous result, or
// asks on in which candidate is meant. Invalid answers are asked again;
// end of input is an error.
func selectCandidate(in io.Reader, out io.Writer, d types.Disambiguation) (types.Candidate, error) {
	if !d.IsAmbiguous || len(d.Candidates) == 1 {
		c := d.Primary()
		fmt.Fprintf(out, "Ausgewählt: %s\n", c.Name)
		return c, nil
	}

	printCandidates(out, d)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Welche Person ist gemeint? [1-%d]: ", len(d.Candidates))
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return types.Candidate{}, fmt.Errorf("reading selection: %w", err)
			}
			return types.Candidate{}, fmt.Errorf("no candidate selected")
		}
		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil || n < 1 || n > len(d.Candidates) {
			fmt.Fprintf(out, "Bitte eine Zahl zwischen 1 und %d eingeben.\n", len(d.Candidates))
			continue
		}
		c := d.Candidates[n-1]
		fmt.Fprintf(out, "Ausgewählt: %s\n", c.Name)
		return c, nil
	}
}

func init() {
	identifyCmd.Flags().Bool("json", false, "print the result as JSON")
	identifyCmd.Flags().Bool("select", false, "ask which candidate is meant")

	rootCmd.AddCommand(identifyCmd)
}
