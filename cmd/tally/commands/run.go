package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [paths...]",
		Short: "Print line-count badges for the given files, or the whole tree",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfigFlag(cmd)
			return c.app.Annotate(cmd.Context(), args)
		},
	}
}
