package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	dio "github.com/matzehuels/depview/pkg/io"
	"github.com/matzehuels/depview/pkg/model"
)

// importCommand validates a graph file and optionally converts it.
func (c *CLI) importCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Validate a graph file and print its statistics",
		Long: `Import reads a graph in the JSON node/edge format or Graphviz DOT, checks
that every edge names a known component, and prints counts. With --output
the graph is written back out as JSON or DOT, chosen by extension.`,
		Example: `  depview import deps.json
  depview import deps.dot -o deps.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, fp, err := dio.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := m.Validate(); err != nil {
				return err
			}

			printSuccess("Imported %s", args[0])
			printStats(m.Len(), m.EdgeCount(), len(m.Roots()))
			printKeyValue("fingerprint", fp[:16])
			if back := m.BackEdges(); len(back) > 0 {
				printWarning("requires cycle: %s skipped by rooted layouts", plural(len(back), "relation"))
				for _, r := range back {
					printDetail("%s -> %s", r.Source.Label(), r.Target.Label())
				}
			}

			if output == "" {
				printNextStep("Render a component", fmt.Sprintf("depview show -g %s %s", args[0], firstLabel(m.Roots())))
				return nil
			}
			switch strings.ToLower(filepath.Ext(output)) {
			case ".json":
				err = dio.ExportJSON(m, output)
			case ".dot", ".gv":
				err = writeFile(output, func(f *os.File) error { return dio.WriteDOT(m, f) })
			default:
				return fmt.Errorf("unsupported output format %q (want .json or .dot)", filepath.Ext(output))
			}
			if err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph as .json or .dot")
	return cmd
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func firstLabel(cs []*model.Component) string {
	if len(cs) == 0 {
		return "LABEL"
	}
	return cs[0].Label()
}
