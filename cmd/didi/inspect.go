package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/didi/internal/cli"
)

func newInspectCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect [directories...]",
		Short: "Print the annotations found without generating code",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if !slices.Contains(cli.InspectFormats, format) {
				return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(cli.InspectFormats, ", "))
			}

			cfg := a.cliConfig(args)
			diagnostics := a.diagnostics(cmd)
			diagnostics.SetOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr())

			g := cli.NewGenerator(cfg, diagnostics)
			reporter := a.reporter(cmd.ErrOrStderr())
			g.SetReporter(reporter)

			inspection, err := g.Inspect()
			if err != nil {
				reporter.ReportError(err)
				return errReported
			}
			return cli.WriteInspection(cmd.OutOrStdout(), inspection, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", cli.FormatText, "output format: "+strings.Join(cli.InspectFormats, ", "))
	return cmd
}
