package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mro/pkg/diag"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/resolve"
)

// resolveCommand looks a member up along a class's MRO.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags runFlags
		after string
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve FILE CLASS MEMBER",
		Short: "Find the class that supplies a member",
		Long: `Search the method resolution order of CLASS for the first class that
defines MEMBER.

With --after, the search starts just past that class, the way a cooperative
super() call continues. With --all, every class that defines MEMBER is
listed in order.`,
		Example: `  mro resolve classes.json D greet
  mro resolve classes.json D greet --after B
  mro resolve classes.json D greet --all`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			class, member := hierarchy.ClassID(args[1]), args[2]

			res, err := c.run(ctx, args[0], flags, args[1])
			if err != nil {
				return err
			}
			sess := res.Session
			defer sess.Close()

			if all {
				chain, err := sess.Definers(ctx, class, member)
				if err != nil {
					return c.reportFailure(cmd, err)
				}
				for _, r := range chain {
					printDefinition(cmd, r)
				}
				return nil
			}

			var r resolve.Resolution
			if after != "" {
				r, err = sess.Super(ctx, class, hierarchy.ClassID(after), member)
			} else {
				r, err = sess.Resolve(ctx, class, member)
			}
			if err != nil {
				return c.reportFailure(cmd, err)
			}
			printDefinition(cmd, r)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&after, "after", "", "start the search after this class")
	cmd.Flags().BoolVar(&all, "all", false, "list every class that defines the member")
	return cmd
}

func printDefinition(cmd *cobra.Command, r resolve.Resolution) {
	line := fmt.Sprintf("%s.%s %s %s", r.Class, r.Member, iconArrow, StyleHighlight.Render(string(r.Owner)))
	if r.Definition != "" {
		line += "  " + StyleDim.Render(string(r.Definition))
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}

// reportFailure prints the diagnostic for err and returns it.
func (c *CLI) reportFailure(cmd *cobra.Command, err error) error {
	printReport(cmd.OutOrStdout(), diag.Explain(err))
	return err
}
