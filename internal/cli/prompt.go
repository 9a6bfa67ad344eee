package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (r *root) promptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <text>...",
		Short: "Ask the model a free-text question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := r.session()
			c := r.newClient(r.logger())
			c.SetToken(session.AccessToken)

			answer, err := c.Prompt(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}
