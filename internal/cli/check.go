package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/mro/pkg/errors"
	mroio "github.com/matzehuels/mro/pkg/io"
)

// checkCommand linearizes a whole hierarchy.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags  runFlags
		output string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Linearize every class and report failures",
		Long: `Linearize every class in FILE, shallow classes first, and report the
classes without a consistent method resolution order.

Exits non-zero when any class fails.`,
		Example: `  mro check classes.json
  mro check classes.toml -o results.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			spin := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Linearizing "+args[0])
			spin.Start()
			prog := newProgress(c.Logger)
			res, err := c.run(cmd.Context(), args[0], flags)
			spin.Stop()
			if err != nil {
				return err
			}
			defer res.Session.Close()
			prog.done(fmt.Sprintf("Checked %d classes", res.Stats.Classes))

			if !quiet {
				printResultTable(out, res.Results)
			}
			printStats(out, res.Stats.Classes, res.Stats.Failed, res.CacheHit)

			for _, r := range res.Results.Classes {
				if r.Error != nil {
					printReport(out, r.Error)
				}
			}

			if output != "" {
				if err := mroio.ExportResults(res.Results, output); err != nil {
					return err
				}
				printFile(out, output)
			}

			if failed := res.Results.Failed(); len(failed) > 0 {
				return errs.New(errs.ErrCodeInconsistentHierarchy, "%d of %d classes have no consistent method resolution order", len(failed), res.Stats.Classes)
			}
			printSuccess(out, "Every class has a consistent method resolution order")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results as JSON to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "omit the per-class table")
	return cmd
}
