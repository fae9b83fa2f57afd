package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mro/pkg/diag"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	mroio "github.com/matzehuels/mro/pkg/io"
	"github.com/matzehuels/mro/pkg/render"
	"github.com/matzehuels/mro/pkg/session"
)

// graphCommand draws the inheritance graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output string
		focus  string
	)

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Draw the inheritance graph",
		Long: `Draw the inheritance graph of FILE as Graphviz DOT, SVG or PNG.

The format follows the extension of --output (.dot, .gv, .svg, .png). Without
--output, DOT is written to stdout. With --focus, classes are numbered by
their position in that class's MRO. Cycles and conflicting classes are
drawn in red.`,
		Example: `  mro graph classes.json | dot -Tsvg > classes.svg
  mro graph classes.json --focus D -o d.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			decls, err := mroio.ImportFile(args[0])
			if err != nil {
				return err
			}
			opts := render.Options{Tables: decls.Tables}

			sess, buildErr := session.New(decls.Decls, session.Options{Tables: decls.Tables, Logger: c.Logger})
			switch {
			case buildErr != nil:
				rep := diag.Explain(buildErr)
				printWarning(cmd.ErrOrStderr(), "hierarchy is malformed: %s", rep.Summary)
				opts.Highlight = rep.Cycle
				if rep.Class != "" {
					opts.Highlight = append(opts.Highlight, rep.Class)
				}
			case focus != "":
				defer sess.Close()
				opts.Focus = hierarchy.ClassID(focus)
				lin, err := sess.Linearize(ctx, opts.Focus)
				if err != nil {
					rep := diag.Explain(err)
					if rep.Code != errs.ErrCodeInconsistentHierarchy {
						return err
					}
					opts.Highlight = rep.Conflicts
				}
				opts.Linearization = lin
			default:
				defer sess.Close()
			}

			dot := render.ToDOT(decls.Decls, opts)
			if output == "" {
				_, err := cmd.OutOrStdout().Write([]byte(dot))
				return err
			}

			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot", ".gv":
				data = []byte(dot)
			case ".svg":
				data, err = render.RenderSVG(ctx, dot)
			case ".png":
				data, err = render.RenderPNG(ctx, dot)
			default:
				return errs.New(errs.ErrCodeUnsupported, "output format %q (want .dot, .gv, .svg or .png)", ext)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", output)
			}
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .gv, .svg, .png)")
	cmd.Flags().StringVar(&focus, "focus", "", "number classes by this class's MRO")
	return cmd
}
