package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skillwire/skillwire/internal/core"
)

var infoCmd = &cobra.Command{
	Use:   "info <skill-slug>",
	Short: "Show an installed skill's metadata and content",
	Long: `Read the skill from the canonical store, print its frontmatter metadata,
and render its markdown body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDeps(verboseFlag(cmd))

		cfg, _, err := loadRunConfig(cmd, d)
		if err != nil {
			return err
		}
		orch := core.NewOrchestrator(cfg, core.Options{Log: d.log})

		path, err := orch.Store().ContentPath(args[0])
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("skill %q is not installed", args[0])
			}
			return err
		}

		meta, body, err := core.ParseSkillContent(string(content))
		if err != nil {
			return fmt.Errorf("parsing skill content: %w", err)
		}

		out := cmd.OutOrStdout()
		if meta != nil {
			if meta.Name != "" {
				fmt.Fprintf(out, "Name:        %s\n", meta.Name)
			}
			if meta.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", meta.Description)
			}
			if meta.License != "" {
				fmt.Fprintf(out, "License:     %s\n", meta.License)
			}
			if meta.Metadata.Author != "" {
				fmt.Fprintf(out, "Author:      %s\n", meta.Metadata.Author)
			}
			if meta.Metadata.Version != "" {
				fmt.Fprintf(out, "Version:     %s\n", meta.Metadata.Version)
			}
			fmt.Fprintln(out)
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(out, body)
			return nil
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			fmt.Fprintln(out, body)
			return nil
		}
		rendered, err := renderer.Render(body)
		if err != nil {
			fmt.Fprintln(out, body)
			return nil
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	addConfigFlags(infoCmd)
	infoCmd.Flags().Bool("raw", false, "Print the markdown body without rendering")
	rootCmd.AddCommand(infoCmd)
}
