package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/letterstacks/internal/api/response"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Profile settings commands",
	}

	var profile string
	cmd.PersistentFlags().StringVar(&profile, "profile", "local", "Profile name")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show a profile's settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Settings
			if err := client.Get(cmd.Context(), "/api/v1/profiles/"+url.PathEscape(profile)+"/settings", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <level> <ceiling>",
		Short: "Store a profile's settings for new sessions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseSettingsArgs(args)
			if err != nil {
				return err
			}
			var result response.Settings
			if err := client.Put(cmd.Context(), "/api/v1/profiles/"+url.PathEscape(profile)+"/settings", req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
