package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyz/didi/internal/cli"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [directories...]",
		Short: "Write autogen_didi.go for every annotated package",
		Example: `  didi generate ./...
  didi generate --check ./...
  didi generate --watch ./internal/...`,
		RunE: a.runGenerate,
	}
	addGenerateFlags(cmd.Flags())
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	cfg := a.cliConfig(args)
	cfg.Check, _ = cmd.Flags().GetBool("check")
	cfg.Watch, _ = cmd.Flags().GetBool("watch")
	if cfg.Check && cfg.Watch {
		return errors.New("--check and --watch cannot be combined")
	}

	diagnostics := a.diagnostics(cmd)
	reporter := a.reporter(cmd.ErrOrStderr())
	g := cli.NewGenerator(cfg, diagnostics)
	g.SetReporter(reporter)

	if cfg.Check {
		diagnostics.Header("checking generated files")
	} else {
		diagnostics.Header("generating registration code")
	}

	err := g.Run()
	if !cfg.Watch {
		if err != nil {
			reporter.ReportError(err)
			return errReported
		}
		if cfg.Verbose {
			reporter.ReportSuccess(g.GetSummary())
		}
		return nil
	}
	if err != nil {
		reporter.ReportError(err)
	}

	w, err := g.NewSourceWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	changes, err := w.Start()
	if err != nil {
		return err
	}
	a.logger.Debug("watching", "debounce", cfg.Debounce)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.Watch(ctx, changes)
}
