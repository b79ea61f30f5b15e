// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dossier-engine/internal/store"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	Long: `Runs lists pipeline runs from the SQLite run log, newest first. Use
--export to dump the whole log as YAML or JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig(viper.GetViper(), loadedSecrets)
		runs, err := store.OpenRunLog(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer runs.Close()

		out := cmd.OutOrStdout()
		if format, _ := cmd.Flags().GetString("export"); format != "" {
			return runs.Export(cmd.Context(), out, format)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		list, err := runs.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		printRuns(out, list)
		return nil
	},
}

func printRuns(w io.Writer, runs []types.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-16s  %-30s  %-10s  %-18s  %6s  %s\n",
		"Started", "Guest", "Verified", "Source", "Secs", "Result")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range runs {
		guest := r.Name
		if len(guest) > 30 {
			guest = guest[:27] + "..."
		}
		result := r.DossierPath
		switch {
		case r.Error != "":
			result = "FAILED: " + r.Error
		case r.FinishedAt.IsZero():
			result = "(running or aborted)"
		}
		fmt.Fprintf(w, "%-16s  %-30s  %-10s  %-18s  %6.0f  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), guest, r.Verification,
			r.ResearchSource, r.Elapsed().Seconds(), result)
	}
}

func init() {
	runsCmd.Flags().String("export", "", "dump the run log as yaml or json")
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")

	rootCmd.AddCommand(runsCmd)
}
