package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/learnmesh/performance"
)

func newScoreCmd(ro *rootOptions) *cobra.Command {
	var (
		sessionID string
		outOf     float64
	)
	cmd := &cobra.Command{
		Use:   "score <score>...",
		Short: "Record quiz scores and print the rolling overall percentage",
		Long: `Records each score in order for the session and prints the aggregate
after the last one. Scores are percentages unless --out-of is given, in
which case they are raw points converted to a percentage.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scores := make([]float64, 0, len(args))
			for _, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("invalid score %q: %w", a, err)
				}
				if outOf > 0 {
					if v, err = performance.Percent(v, outOf); err != nil {
						return err
					}
				}
				scores = append(scores, v)
			}

			ctx := cmd.Context()
			mesh, _, err := openMesh(ctx, ro)
			if err != nil {
				return err
			}
			defer mesh.Close()

			var res performance.AggregateResult
			for _, s := range scores {
				if res, err = mesh.RecordScore(ctx, sessionID, s); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "learner session ID")
	cmd.Flags().Float64Var(&outOf, "out-of", 0, "treat scores as raw points out of this maximum")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
