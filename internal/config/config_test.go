package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	didierrors "github.com/toyz/didi/internal/errors"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
directories: [./internal/..., ./pkg]
module: example.com/app
output: wiring.go
fx: false
log_level: debug
strict: true
debounce: 2s
`), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Directories: []string{"./internal/...", "./pkg"},
		Module:      "example.com/app",
		Output:      "wiring.go",
		Fx:          false,
		LogLevel:    "debug",
		Strict:      true,
		Debounce:    2 * time.Second,
	}, cfg)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quiet: true\n"), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.True(t, cfg.Quiet)

	_, err = Load(viper.New(), filepath.Join(dir, "missing.yaml"))
	var didiErr didierrors.DidiError
	require.ErrorAs(t, err, &didiErr)
	assert.Equal(t, didierrors.ConfigurationErrorCode, didiErr.ErrorCode())
	assert.Contains(t, didiErr.Suggestions(), "Check the --config path")
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("output: from_file.go\nmodule: file.example\n"), 0o644))
	t.Setenv("DIDI_MODULE", "env.example")
	t.Setenv("DIDI_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--output=from_flag.go"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("output", flags.Lookup("output")))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "from_flag.go", cfg.Output)
	assert.Equal(t, "env.example", cfg.Module)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"bad yaml", "output: [", "failed to read configuration"},
		{"bad level", "log_level: loud", `unknown log level "loud"`},
		{"bad debounce", "debounce: 0s", "debounce must be positive"},
		{"verbose and quiet", "verbose: true\nquiet: true", "cannot both be set"},
		{"output path", "output: gen/out.go", "output must be a .go file name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0o644))

			_, err := Load(viper.New(), "")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}
