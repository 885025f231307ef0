package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depview/pkg/view"
)

// browseCommand opens the interactive terminal browser.
func (c *CLI) browseCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "browse LABEL",
		Short: "Explore the graph interactively in the terminal",
		Example: `  depview browse -g deps.json api
  depview browse --remote http://localhost:8080 --layout tree api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			src, err := c.openSource(ctx, cfg, flags.graph)
			if err != nil {
				return err
			}
			defer src.Close()

			opts := c.paneOptions(cfg)
			opts.Logger = nil
			pane := view.New(src.Fetcher, opts)
			defer pane.Close()

			frames := make(chan view.Frame, 64)
			unsubscribe := pane.Subscribe(relayFrames(ctx, frames))
			defer unsubscribe()

			model := NewBrowseModel(ctx, pane, src.Fetcher, frames, opts, args[0])
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			cancel()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// relayFrames forwards pane frames to ch without stalling the pane loop on
// intermediate force frames. Terminal frames are always delivered unless
// ctx ends.
func relayFrames(ctx context.Context, ch chan<- view.Frame) func(view.Frame) {
	return func(f view.Frame) {
		if !f.Terminal {
			select {
			case ch <- f:
			default:
			}
			return
		}
		select {
		case ch <- f:
		case <-ctx.Done():
		}
	}
}
