package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/didi/internal/cli"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [directories...]",
		Short: "Delete generated files",
		Long: `Delete the generated file from every matched directory. Files that carry the
name but not the "Code generated by didi" header are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cliConfig(args)
			diagnostics := a.diagnostics(cmd)
			diagnostics.Header("cleaning generated files")

			removed, err := cli.NewCleaner(cfg.OutputFile).CleanGeneratedFiles(cfg.Directories)
			for _, file := range removed {
				diagnostics.PhaseItem("Removed " + file)
			}
			if err != nil {
				a.reporter(cmd.ErrOrStderr()).ReportError(err)
				return errReported
			}
			diagnostics.Success("Removed %d generated files", len(removed))
			return nil
		},
	}
}
