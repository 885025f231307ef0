package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depview/pkg/config"
	"github.com/matzehuels/depview/pkg/render/sink"
	"github.com/matzehuels/depview/pkg/view"
)

// showCommand renders one component's neighborhood to SVG.
func (c *CLI) showCommand() *cobra.Command {
	var (
		flags  viewFlags
		output string
		style  string
		noText bool
	)

	cmd := &cobra.Command{
		Use:   "show LABEL",
		Short: "Render the neighborhood of a component as SVG",
		Example: `  depview show -g deps.json api
  depview show -g deps.dot --layout tree --requires 2 --required-by 0 api -o api.svg
  depview show --remote http://localhost:8080 api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("style") {
				cfg.View.Style = style
			}
			if output == "" {
				output = args[0] + ".svg"
			}

			svg, frame, err := c.renderComponent(cmd.Context(), cfg, flags.graph, args[0], noText)
			if err != nil {
				return err
			}
			if frame.Warning != "" {
				printWarning("%s", frame.Warning)
			}
			if output == "-" {
				_, err := os.Stdout.Write(svg)
				return err
			}
			if err := os.WriteFile(output, svg, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s (%s layout)", args[0], cfg.View.Layout)
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default LABEL.svg)")
	cmd.Flags().StringVar(&style, "style", "", "SVG style: simple or outline")
	cmd.Flags().BoolVar(&noText, "no-text", false, "omit node captions")
	return cmd
}

// renderComponent runs one pane request to completion and serializes the
// resulting scene.
func (c *CLI) renderComponent(ctx context.Context, cfg config.Config, graphPath, label string, noText bool) ([]byte, view.Frame, error) {
	src, err := c.openSource(ctx, cfg, graphPath)
	if err != nil {
		return nil, view.Frame{}, err
	}
	defer src.Close()

	pane := view.New(src.Fetcher, c.paneOptions(cfg))
	defer pane.Close()

	spinner := newSpinner(ctx, "Loading "+label)
	unsubscribe := pane.Subscribe(func(f view.Frame) {
		if f.Steps > 0 && !f.Terminal {
			spinner.SetMessage(fmt.Sprintf("Laying out %s (step %d)", label, f.Steps))
		}
	})
	defer unsubscribe()
	spinner.Start()

	frame, err := pane.Wait(ctx, pane.ShowComponent(ctx, label))
	spinner.Stop()
	switch {
	case err != nil:
		return nil, frame, err
	case frame.NotFound:
		return nil, frame, fmt.Errorf("component %q not found", label)
	case frame.Err != nil:
		return nil, frame, frame.Err
	}

	opts := []sink.SVGOption{sink.WithStyle(sink.StyleByName(cfg.View.Style))}
	if noText {
		opts = append(opts, sink.WithoutText())
	}
	return sink.RenderSVG(pane.Scene(), opts...), frame, nil
}
