// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var researchCmd = &cobra.Command{
	Use:   "research NAME",
	Short: "Gather and verify research for one guest",
	Long: `Research runs the deep research provider and a realtime news and social
media check in parallel, falls back to other providers when the primary
fails, and filters namesake content using the context hint.

The raw document is written to <research-dir>/<slug>_research_raw.md and
the verified one to <research-dir>/<slug>_research.md.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		hint, _ := cmd.Flags().GetString("hint")

		p, _ := newPipeline(cmd.OutOrStdout())
		res, err := p.RunResearch(cmd.Context(), name, hint)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Path)
		return nil
	},
}

func init() {
	researchCmd.Flags().String("hint", "", "context hint separating the guest from namesakes")

	rootCmd.AddCommand(researchCmd)
}
