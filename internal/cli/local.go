package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mcoot/letterstacks/internal/config"
	"github.com/mcoot/letterstacks/internal/factory"
)

// localFlags configure an in-process game used by 'play' and 'audit'
type localFlags struct {
	configPath string
	dictionary string
}

// openLocal wires a full application in this process, reading the same
// config file and environment the server does
func openLocal(ctx context.Context, warn io.Writer, flags localFlags, opts factory.Options) (*factory.App, error) {
	lookup, err := config.Environment(".env")
	if err != nil {
		return nil, err
	}
	appCfg, err := config.Load(flags.configPath, lookup)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.dictionary != "" {
		appCfg.Dictionary.Path = flags.dictionary
	}

	app, err := factory.New(ctx, appCfg, opts)
	if err != nil {
		return nil, err
	}
	// An unloaded dictionary rejects every word, which is still playable
	if err := app.DictionaryService.Load(ctx, appCfg.Dictionary.Path); err != nil {
		fmt.Fprintf(warn, "warning: no dictionary loaded, every word will be rejected: %v\n", err)
	}
	return app, nil
}
