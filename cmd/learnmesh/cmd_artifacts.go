package main

import (
	"github.com/spf13/cobra"
)

func newArtifactsCmd(ro *rootOptions) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect saved session artifacts",
	}
	cmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "learner session ID")
	_ = cmd.MarkPersistentFlagRequired("session")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List artifact names of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mesh, _, err := openMesh(ctx, ro)
			if err != nil {
				return err
			}
			defer mesh.Close()

			names, err := mesh.ArtifactStore().List(ctx, sessionID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), names)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "versions <name>",
		Short: "List the saved versions of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mesh, _, err := openMesh(ctx, ro)
			if err != nil {
				return err
			}
			defer mesh.Close()

			versions, err := mesh.ArtifactStore().Versions(ctx, sessionID, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), versions)
		},
	})
	return cmd
}
