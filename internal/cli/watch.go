package cli

import (
	"context"

	"github.com/toyz/didi/internal/utils"
	"github.com/toyz/didi/internal/watcher"
)

// NewSourceWatcher creates a watcher over every directory the generator
// scans
func (g *Generator) NewSourceWatcher() (*watcher.Watcher, error) {
	dirs, err := g.scanner.WatchDirectories(g.config.directories())
	if err != nil {
		return nil, err
	}

	cfg := watcher.DefaultConfig(dirs, g.config.outputFile())
	if g.config.Debounce > 0 {
		cfg.DebounceDur = g.config.Debounce
	}
	cfg.SkipDir = utils.SkipDirectoryName
	return watcher.New(cfg)
}

// Watch runs a generation pass for every signal on changes until ctx is
// done. Failed passes are reported and watching continues.
func (g *Generator) Watch(ctx context.Context, changes <-chan struct{}) error {
	g.diagnostics.Info("Watching for changes (Ctrl+C to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			g.diagnostics.Header("sources changed, regenerating")
			if err := g.Run(); err != nil {
				g.reporter.ReportError(err)
			}
		}
	}
}
