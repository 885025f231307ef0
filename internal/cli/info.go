package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depview/pkg/panel"
)

// infoCommand prints the detail panel for a component.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		flags viewFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "info LABEL",
		Short: "Show what a component requires and what requires it",
		Example: `  depview info -g deps.json api
  depview info --remote http://localhost:8080 api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			src, err := c.openSource(cmd.Context(), cfg, flags.graph)
			if err != nil {
				return err
			}
			defer src.Close()

			doc, err := src.Fetcher.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d := panel.FromDocument(doc)

			theme := panel.TerminalTheme()
			if plain {
				theme = panel.Theme{}
			}
			fmt.Fprint(out, theme.Format(d))
			if !d.Found {
				return fmt.Errorf("component %q not found", args[0])
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	return cmd
}
