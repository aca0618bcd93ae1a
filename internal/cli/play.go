package cli

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/mcoot/letterstacks/internal/factory"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/tui"
)

func newPlayCmd() *cobra.Command {
	var (
		local   localFlags
		profile string
		level   int
		ceiling int
		mute    bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		Long: `Play a game in this terminal without a server. Storage and the
dictionary come from the same config file and environment the server reads.

Settings default to the profile's saved settings; --level and --ceiling
override them for this game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := openLocal(ctx, cmd.ErrOrStderr(), local, factory.Options{AutoRun: true})
			if err != nil {
				return err
			}
			defer app.Close()

			var override *model.Settings
			if level != 0 || ceiling != 0 {
				settings, err := app.SettingsService.Get(ctx, profile)
				if err != nil {
					return err
				}
				if level != 0 {
					settings.Level = level
				}
				if ceiling != 0 {
					settings.StackCeiling = ceiling
				}
				if err := settings.Validate(); err != nil {
					return fmt.Errorf("level must be %d-%d and ceiling %d-%d: %w",
						model.MinLevel, model.MaxLevel, model.MinStackCeiling, model.MaxStackCeiling, err)
				}
				override = &settings
			}

			sound := tui.NewSoundManager()
			if !mute {
				if err := sound.Initialize(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: sound disabled: %v\n", err)
				}
			}
			defer sound.Close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			g := tui.New(screen, app.GameController, sound, app.Logger)
			app.GameController.SetPublisher(g)
			if err := g.Start(ctx, profile, override); err != nil {
				return err
			}
			return g.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&local.configPath, "config", "", "Config file (default: $LETTERSTACKS_CONFIG or config.yaml)")
	cmd.Flags().StringVar(&local.dictionary, "dictionary", "", "Word list, overriding the configured one")
	cmd.Flags().StringVar(&profile, "profile", model.DefaultProfile, "Profile whose settings and scores are used")
	cmd.Flags().IntVar(&level, "level", 0, "Difficulty level 1-25")
	cmd.Flags().IntVar(&ceiling, "ceiling", 0, "Stack height that loses the game, 5-10")
	cmd.Flags().BoolVar(&mute, "mute", false, "Disable sound")

	return cmd
}
