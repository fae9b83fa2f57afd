package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mro/pkg/diag"
	errs "github.com/matzehuels/mro/pkg/errors"
	mroio "github.com/matzehuels/mro/pkg/io"
)

// linearizeCommand prints the MRO of selected classes.
func (c *CLI) linearizeCommand() *cobra.Command {
	var (
		flags  runFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "linearize FILE [CLASS...]",
		Aliases: []string{"mro"},
		Short:   "Print the method resolution order of classes",
		Long: `Print the method resolution order of each CLASS, or of every class in
FILE when none is named.`,
		Example: `  mro linearize classes.json D
  mro linearize classes.json D E --compare
  mro linearize classes.json D --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			res, err := c.run(cmd.Context(), args[0], flags, args[1:]...)
			if err != nil {
				return err
			}
			defer res.Session.Close()

			if asJSON {
				return mroio.WriteResults(out, res.Results)
			}

			var first *diag.Report
			for _, r := range res.Results.Classes {
				if r.Error != nil {
					printReport(out, r.Error)
					if first == nil {
						first = r.Error
					}
					continue
				}
				printOrder(out, r)
			}
			if first != nil {
				return errs.New(first.Code, "%s", first.Summary)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.compare, "compare", false, "also show the naive depth-first order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
