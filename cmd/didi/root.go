package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/didi/internal/cli"
	"github.com/toyz/didi/internal/config"
	"github.com/toyz/didi/internal/logging"
	"github.com/toyz/didi/internal/parser"
	"github.com/toyz/didi/internal/utils"
)

var version = "dev"

// errReported marks failures whose diagnostics were already printed
var errReported = errors.New("didi: errors reported")

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"module":    "module",
	"verbose":   "verbose",
	"quiet":     "quiet",
	"output":    "output",
	"log-level": "log_level",
	"strict":    "strict",
	"debounce":  "debounce",
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "didi [directories...]",
		Short: "Generate dependency registration code from //didi:: annotations",
		Long: `didi scans Go packages for //didi::inject, //didi::component and //didi::factory
annotations and writes one autogen_didi.go per package. The generated file records
each type's dependency list and registers components with a didi module.

Directory patterns follow the go tool: ./... scans recursively, ./pkg/modeler
scans one directory. With no arguments the configured directories are used.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
		RunE:              a.runGenerate,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./"+config.FileName+")")
	pf.String("module", "", "module path used for import paths (defaults to go.mod)")
	pf.Bool("verbose", false, "enable verbose output and detailed error reporting")
	pf.BoolP("quiet", "q", false, "only show errors")
	pf.StringP("output", "o", parser.DefaultOutputFile, "name of the generated file in each package")
	pf.Bool("no-fx", false, "do not generate the FxModule function")
	pf.String("log-level", "info", "log level: debug, info, warn or error")

	addGenerateFlags(root.Flags())
	root.AddCommand(newGenerateCmd(a), newCleanCmd(a), newInspectCmd(a))
	return root
}

func addGenerateFlags(fs *pflag.FlagSet) {
	fs.Bool("check", false, "fail with a diff instead of writing when generated files are stale")
	fs.BoolP("watch", "w", false, "regenerate whenever Go sources change")
	fs.Duration("debounce", config.Defaults().Debounce, "quiet period before a watch run")
	fs.Bool("strict", false, "fail on dependencies no scanned package provides")
}

// load binds the running command's flags and reads the configuration
func (a *app) load(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	for flag, key := range flagKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if noFx, _ := flags.GetBool("no-fx"); noFx {
		cfg.Fx = false
	}
	a.cfg = cfg

	a.logger = logging.Setup(logging.Options{
		Level:     cfg.LogLevel,
		Writer:    cmd.ErrOrStderr(),
		Component: "didi",
	})
	a.logger.Debug("configuration loaded", "file", a.v.ConfigFileUsed(), "output", cfg.Output, "fx", cfg.Fx)
	return nil
}

// cliConfig converts the loaded configuration for the generator.
// Positional arguments replace the configured directories.
func (a *app) cliConfig(args []string) cli.Config {
	dirs := a.cfg.Directories
	if len(args) > 0 {
		dirs = args
	}
	return cli.Config{
		Directories: dirs,
		ModuleName:  a.cfg.Module,
		Verbose:     a.cfg.Verbose,
		Quiet:       a.cfg.Quiet,
		OutputFile:  a.cfg.Output,
		Fx:          a.cfg.Fx,
		Strict:      a.cfg.Strict,
		Debounce:    a.cfg.Debounce,
	}
}

func (a *app) diagnostics(cmd *cobra.Command) *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case a.cfg.Quiet:
		d = utils.NewQuietDiagnostics()
	case a.cfg.Verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	d.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return d
}

func (a *app) reporter(out io.Writer) *cli.DiagnosticReporter {
	return cli.NewDiagnosticReporterTo(out, a.cfg.Verbose)
}
