package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/letterstacks/internal/api/response"
)

func newScoresCmd() *cobra.Command {
	var (
		profile string
		level   int
		mode    string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "List recorded scores",
		Long: `List recorded scores. Wins are ranked fastest first, survival runs
longest first, and wins always rank above survival runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if profile != "" {
				q.Set("profile", profile)
			}
			if level != 0 {
				q.Set("level", strconv.Itoa(level))
			}
			if mode != "" {
				q.Set("mode", mode)
			}
			q.Set("limit", strconv.Itoa(limit))

			var result response.ScoresResponse
			if err := client.Get(cmd.Context(), "/api/v1/scores?"+q.Encode(), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Only scores for this profile")
	cmd.Flags().IntVar(&level, "level", 0, "Only scores at this level")
	cmd.Flags().StringVar(&mode, "mode", "", "Only 'win' or 'survival' scores")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of scores (0 for all)")

	return cmd
}
