package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand opens the interactive hierarchy browser.
func (c *CLI) browseCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "browse FILE",
		Short: "Browse linearizations interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			res, err := c.run(ctx, args[0], flags)
			if err != nil {
				return err
			}
			defer res.Session.Close()

			model := NewClassListModel(res.Session.Graph(), res.Results)
			_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
