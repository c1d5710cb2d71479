package parser

import (
	"fmt"
	"strings"

	"github.com/toyz/didi/internal/models"
)

// Errors lists every problem found while parsing one package
type Errors struct {
	Package string
	List    []*models.GeneratorError
}

func (e *Errors) Error() string {
	if len(e.List) == 1 {
		return e.List[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "package %s: %d errors", e.Package, len(e.List))
	for _, err := range e.List {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes each error to errors.Is and errors.As
func (e *Errors) Unwrap() []error {
	errs := make([]error, len(e.List))
	for i, err := range e.List {
		errs[i] = err
	}
	return errs
}
