package cli

import (
	"time"

	"github.com/toyz/didi/internal/parser"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directory patterns to scan for annotated
	// Go files. A trailing "/..." scans recursively.
	Directories []string

	// ModuleName overrides the module path read from go.mod
	ModuleName string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet limits output to errors
	Quiet bool

	// OutputFile is the name of the generated file in each package
	OutputFile string

	// Fx controls whether generated files expose an FxModule function
	Fx bool

	// Check renders without writing and fails when a generated file is stale
	Check bool

	// Strict turns dependencies no scanned package provides into errors
	Strict bool

	// Watch keeps regenerating as sources change
	Watch bool

	// Debounce is the quiet period the watcher waits for before a run
	Debounce time.Duration
}

// DefaultConfig returns the configuration used when no flags are given
func DefaultConfig() Config {
	return Config{
		Directories: []string{"./..."},
		OutputFile:  parser.DefaultOutputFile,
		Fx:          true,
		Debounce:    500 * time.Millisecond,
	}
}

func (c Config) outputFile() string {
	if c.OutputFile == "" {
		return parser.DefaultOutputFile
	}
	return c.OutputFile
}

func (c Config) directories() []string {
	if len(c.Directories) == 0 {
		return []string{"."}
	}
	return c.Directories
}
