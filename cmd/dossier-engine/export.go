// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dossier-engine/internal/dossier"
)

var exportCmd = &cobra.Command{
	Use:   "export DOSSIER.md",
	Short: "Render a dossier as a standalone HTML page",
	Long: `Export renders a dossier to HTML, keeping the section anchors so the
navigation links work. The page is written next to the dossier unless
--output names another file. A dossier that does not match the expected
section layout is exported anyway with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("reading dossier %s: %w", src, err)
		}

		if err := dossier.Validate(string(data)); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		page, err := htmlPage(string(data))
		if err != nil {
			return err
		}

		dst, _ := cmd.Flags().GetString("output")
		if dst == "" {
			dst = strings.TrimSuffix(src, ".md") + ".html"
		}
		if err := os.WriteFile(dst, page, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), dst)
		return nil
	},
}

// htmlPage wraps the rendered dossier body in a minimal document.
func htmlPage(doc string) ([]byte, error) {
	body, err := dossier.RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	title := "Dossier"
	if name := dossier.Title(doc); name != "" {
		title += ": " + name
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"de\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String()), nil
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "HTML file to write (default: dossier path with .html)")

	rootCmd.AddCommand(exportCmd)
}
