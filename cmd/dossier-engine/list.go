// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dossier-engine/internal/slug"
	"github.com/pdiddy/dossier-engine/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored dossiers and research files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := store.NewFileStore(pipelineConfig(viper.GetViper(), loadedSecrets).Storage)

		dossiers, err := files.ListDossiers()
		if err != nil {
			return err
		}
		research, err := files.ListResearch()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printEntries(out, "Dossiers", dossiers)
		fmt.Fprintln(out)
		printEntries(out, "Research", research)
		return nil
	},
}

func printEntries(w io.Writer, title string, entries []store.Entry) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s  %-30s  %s\n", e.ModTime.Local().Format("2006-01-02 15:04"), e.Slug, e.Path)
	}
}

var showCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print the stored research for a guest",
	Long: `Show prints the verified research file for a guest. With --raw it prints
the document as it was before the namesake filter ran.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		s := slug.Make(name)
		if s == "" {
			return fmt.Errorf("guest name %q has no letters or digits", name)
		}

		files := store.NewFileStore(pipelineConfig(viper.GetViper(), loadedSecrets).Storage)
		path := files.ResearchPath(s)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			path = files.RawResearchPath(s)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("no research stored for %q: %w", name, err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "print the research before namesake filtering")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
