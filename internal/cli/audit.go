package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/letterstacks/internal/factory"
	"github.com/mcoot/letterstacks/internal/services/audit"
	"github.com/mcoot/letterstacks/internal/services/autoplay"
)

func newAuditCmd() *cobra.Command {
	var (
		local    localFlags
		cfg      audit.Config
		strategy string
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Replay the spawn scheduler and report how fairly it picks cells",
		Long: `Run the spawn scheduler for many cycles on a scratch board and report
how often the tallest-stack pick had to fall back to a cooling cell, how often
random picks landed on cooling cells, and the gaps between tallest picks.

With --autoplay a word is played after every cycle, so stacks shrink the way
they would in a real game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if strategy != "" && !slices.Contains(autoplay.ValidStrategies(), strategy) {
				return fmt.Errorf("unknown autoplay strategy %q: must be one of %s",
					strategy, strings.Join(autoplay.ValidStrategies(), ", "))
			}

			app, err := openLocal(ctx, cmd.ErrOrStderr(), local, factory.Options{Seed: seed})
			if err != nil {
				return err
			}
			defer app.Close()

			if strategy != "" {
				cfg.Strategy = autoplay.NewStrategy(strategy, app.DictionaryService, app.Random)
			}

			report, err := app.Auditor.Run(ctx, cfg)
			if err != nil {
				return err
			}
			output(cmd).Print(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&local.configPath, "config", "", "Config file (default: $LETTERSTACKS_CONFIG or config.yaml)")
	cmd.Flags().StringVar(&local.dictionary, "dictionary", "", "Word list for --autoplay, overriding the configured one")
	cmd.Flags().IntVar(&cfg.Level, "level", audit.DefaultLevel, "Level whose tempo preset drives the run")
	cmd.Flags().IntVar(&cfg.Cycles, "cycles", audit.DefaultCycles, "Spawn cycles to run")
	cmd.Flags().IntVar(&cfg.Ceiling, "ceiling", audit.DefaultCeiling, "Stack ceiling for the run")
	cmd.Flags().StringVar(&strategy, "autoplay", "", "Play a word after each cycle: "+strings.Join(autoplay.ValidStrategies(), ", "))
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible runs (0 for random)")

	return cmd
}
