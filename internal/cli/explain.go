package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mro/pkg/diag"
	errs "github.com/matzehuels/mro/pkg/errors"
)

// explainCommand describes why a hierarchy or class fails.
func (c *CLI) explainCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "explain FILE [CLASS]",
		Short: "Explain why a class has no consistent order",
		Long: `Explain the failure of CLASS, or of the hierarchy in FILE as a whole.

For an inconsistent class the report names the conflicting classes, the
order built so far and the precedence constraints that cannot all hold.
Structural problems such as cycles and unknown bases are reported even
without CLASS.`,
		Example: `  mro explain classes.json X
  mro explain broken.toml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			res, err := c.run(cmd.Context(), args[0], flags, args[1:]...)
			if err != nil {
				if !isGraphError(err) {
					return err
				}
				printReport(out, diag.Explain(err))
				return nil
			}
			defer res.Session.Close()

			if len(args) == 2 {
				r, _ := res.Results.Lookup(args[1])
				if r.Error != nil {
					printReport(out, r.Error)
					return nil
				}
				printSuccess(out, "%s has a consistent method resolution order", args[1])
				printDetail(out, "%s", formatOrder(r.MRO))
				return nil
			}

			failed := res.Results.Failed()
			if len(failed) == 0 {
				printSuccess(out, "Every class has a consistent method resolution order")
				return nil
			}
			for _, name := range failed {
				r, _ := res.Results.Lookup(name)
				printReport(out, r.Error)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// isGraphError reports whether err describes the hierarchy rather than the
// input file or the environment.
func isGraphError(err error) bool {
	switch errs.GetCode(err) {
	case errs.ErrCodeUnknownBase, errs.ErrCodeDuplicateDeclaration, errs.ErrCodeDuplicateBase,
		errs.ErrCodeSelfInheritance, errs.ErrCodeCycleDetected, errs.ErrCodeUnknownClass:
		return true
	}
	return false
}
