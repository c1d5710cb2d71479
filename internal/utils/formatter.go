package utils

import (
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"

	"golang.org/x/tools/imports"
)

// importOptions sorts and groups imports without resolving packages, which
// would shell out to the go command
var importOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// FormatGoCode formats source the way goimports does, falling back to
// go/format when import processing fails
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, importOptions)
	if err == nil {
		return formatted, nil
	}

	formatted, fmtErr := format.Source(source)
	if fmtErr != nil {
		if parseErr := ValidateGoCode(string(source)); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w (format error: %v)", parseErr, fmtErr)
		}
		return source, fmtErr
	}
	return formatted, nil
}

// FormatGoCodeString is FormatGoCode for strings
func FormatGoCodeString(filename, source string) (string, error) {
	formatted, err := FormatGoCode(filename, []byte(source))
	return string(formatted), err
}

// FormatAndWriteGoFile formats code and writes it to filename. Unformattable
// code is not written.
func FormatAndWriteGoFile(filename string, code string) error {
	formatted, err := FormatGoCode(filename, []byte(code))
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", filename, err)
	}

	if err := os.WriteFile(filename, formatted, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
