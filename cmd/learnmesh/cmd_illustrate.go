package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newIllustrateCmd(ro *rootOptions) *cobra.Command {
	var sessionID, name string
	cmd := &cobra.Command{
		Use:   "illustrate <prompt>",
		Short: "Generate an illustration and save it as a session artifact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mesh, _, err := openMesh(ctx, ro)
			if err != nil {
				return err
			}
			defer mesh.Close()

			res, err := mesh.Illustrate(ctx, sessionID, strings.Join(args, " "), name)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "learner session ID")
	cmd.Flags().StringVarP(&name, "name", "n", "", "artifact name (derived from the prompt when empty)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
