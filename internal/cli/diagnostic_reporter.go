package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/toyz/didi/internal/errors"
	"github.com/toyz/didi/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterTo(os.Stderr, verbose)
}

// NewDiagnosticReporterTo creates a reporter writing to out
func NewDiagnosticReporterTo(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

// ReportWarning prints a one line warning with optional suggestions
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
	for _, s := range suggestions {
		fmt.Fprintf(r.out, "    %s\n", s)
	}
}

// ReportError prints every error found in err. Joined errors, parser
// error lists and MultipleErrors are reported one entry at a time.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	reportable := flattenErrors(err)
	title := "ERROR: Code Generation Failed"
	if len(reportable) > 1 {
		title = fmt.Sprintf("ERROR: Code Generation Failed (%d errors)", len(reportable))
	}
	color.New(color.FgRed, color.Bold).Fprintf(r.out, "\n%s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("=", len(title)))

	for i, e := range reportable {
		if len(reportable) > 1 {
			fmt.Fprintf(r.out, "[%d/%d] ", i+1, len(reportable))
		}
		var genErr *models.GeneratorError
		var didiErr errors.DidiError
		switch {
		case stderrors.As(e, &genErr):
			r.reportGeneratorError(genErr)
		case stderrors.As(e, &didiErr):
			r.reportDidiError(didiErr)
		default:
			r.reportBasicError(e)
		}
	}

	r.printHelpFooter()
}

// flattenErrors expands error trees into their reportable leaves. An error
// that carries its own diagnostics stops the descent.
func flattenErrors(err error) []error {
	switch e := err.(type) {
	case *models.GeneratorError, errors.DidiError:
		return []error{e}
	case interface{ Unwrap() []error }:
		var out []error
		for _, inner := range e.Unwrap() {
			out = append(out, flattenErrors(inner)...)
		}
		return out
	}
	if wrapped := stderrors.Unwrap(err); wrapped != nil {
		inner := flattenErrors(wrapped)
		if len(inner) > 1 {
			return inner
		}
	}
	return []error{err}
}

func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	r.printErrorHeader(genErrorLabel(genErr.Type))

	fmt.Fprintf(r.out, "Message: %s\n\n", genErr.Message)
	if r.verbose && genErr.Cause != nil {
		fmt.Fprintf(r.out, "Underlying cause: %s\n\n", genErr.Cause.Error())
	}

	if genErr.File != "" {
		if genErr.Line > 0 {
			fmt.Fprintf(r.out, "Location: %s:%d\n\n", genErr.File, genErr.Line)
		} else {
			fmt.Fprintf(r.out, "File: %s\n\n", genErr.File)
		}
	}

	if len(genErr.Context) > 0 {
		r.printContext(genErr.Context)
	}
	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}
	if genErr.Type == models.ErrorTypeAnnotationSyntax {
		r.printAnnotationHelp()
	}
	if r.verbose {
		r.printErrorChain(genErr.Cause)
	}
}

func (r *DiagnosticReporter) reportDidiError(err errors.DidiError) {
	r.printErrorHeader(err.ErrorCode().String())

	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc)
	}
	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if len(err.Suggestions()) > 0 {
		r.printSuggestions(err.Suggestions())
	}
	if r.verbose {
		r.printErrorChain(err.Unwrap())
	}
}

func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	errorMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errorMsg, "annotation"):
		fmt.Fprintf(r.out, "This appears to be an annotation-related issue.\n")
		r.printAnnotationHelp()
	case strings.Contains(errorMsg, "module"):
		fmt.Fprintf(r.out, "This appears to be a module-related issue.\n")
		fmt.Fprintf(r.out, "Common solutions:\n")
		fmt.Fprintf(r.out, "  - Check your go.mod file\n")
		fmt.Fprintf(r.out, "  - Try specifying --module flag explicitly\n\n")
	}
}

func genErrorLabel(t models.ErrorType) string {
	switch t {
	case models.ErrorTypeAnnotationSyntax:
		return "Annotation Syntax Error"
	case models.ErrorTypeValidation:
		return "Validation Error"
	case models.ErrorTypeGeneration:
		return "Code Generation Error"
	case models.ErrorTypeFileSystem:
		return "File System Error"
	default:
		return "Unknown Error"
	}
}

func (r *DiagnosticReporter) printErrorHeader(label string) {
	fmt.Fprintf(r.out, "Type: %s\n", label)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(label)+6))
}

// printContext prints context entries sorted by key, except the rendered
// source, which is only shown in verbose mode.
func (r *DiagnosticReporter) printContext(context map[string]any) {
	keys := slices.Sorted(maps.Keys(context))
	printed := false
	for _, key := range keys {
		if key == "source" && !r.verbose {
			continue
		}
		if !printed {
			fmt.Fprintf(r.out, "Context:\n")
			printed = true
		}
		value := fmt.Sprintf("%v", context[key])
		if strings.Contains(value, "\n") {
			fmt.Fprintf(r.out, "   %s:\n", formatContextKey(key))
			for _, line := range splitLines(value) {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
			continue
		}
		fmt.Fprintf(r.out, "   %s: %s\n", formatContextKey(key), value)
	}
	if printed {
		fmt.Fprintf(r.out, "\n")
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printAnnotationHelp() {
	fmt.Fprintf(r.out, "Annotation Syntax Help:\n")
	fmt.Fprintf(r.out, "  - Annotations must start with //didi::\n")
	fmt.Fprintf(r.out, "  - //didi::inject takes one or more identifiers, e.g. //didi::inject eventBus canvas\n")
	fmt.Fprintf(r.out, "  - Flags and parameters follow the identifiers: -Init, -Ctor=NewThing\n\n")
}

func (r *DiagnosticReporter) printHelpFooter() {
	fmt.Fprintf(r.out, "For more help:\n")
	fmt.Fprintf(r.out, "  - Run with --verbose for more detailed output\n")
	fmt.Fprintf(r.out, "  - Run 'didi inspect' to see what was parsed\n\n")
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; err != nil; level++ {
		fmt.Fprintf(r.out, "    %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
	}
	fmt.Fprintf(r.out, "\n")
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] "+format+"\n", args...)
	}
}

// ReportDiff prints a unified diff with colored insertions and deletions
func (r *DiagnosticReporter) ReportDiff(oldName, newName, oldText, newText string) {
	diff := UnifiedDiff(oldName, newName, oldText, newText)
	if diff == "" {
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for _, line := range splitLines(diff) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			color.New(color.Bold).Fprintln(r.out, line)
		case strings.HasPrefix(line, diffPrefix(diffmatchpatch.DiffInsert)):
			green.Fprintln(r.out, line)
		case strings.HasPrefix(line, diffPrefix(diffmatchpatch.DiffDelete)):
			red.Fprintln(r.out, line)
		default:
			fmt.Fprintln(r.out, line)
		}
	}
}

func diffPrefix(op diffmatchpatch.Operation) string {
	return DiffLine{Op: op}.Prefix()
}

// ReportSuccess reports successful generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	fmt.Fprintf(r.out, "\nCode Generation Completed Successfully!\n")
	fmt.Fprintf(r.out, "=======================================\n\n")

	if summary.PackagesProcessed > 0 {
		fmt.Fprintf(r.out, "Processed %d packages\n", summary.PackagesProcessed)
	}
	if summary.ModulesGenerated > 0 {
		fmt.Fprintf(r.out, "Generated %d modules\n", summary.ModulesGenerated)
	}
	if summary.ModulesUnchanged > 0 {
		fmt.Fprintf(r.out, "%d modules already up to date\n", summary.ModulesUnchanged)
	}
	if summary.ComponentsFound > 0 {
		fmt.Fprintf(r.out, "Found %d components\n", summary.ComponentsFound)
	}
	if summary.InjectionsFound > 0 {
		fmt.Fprintf(r.out, "Found %d inject annotations\n", summary.InjectionsFound)
	}

	if len(summary.GeneratedFiles) > 0 {
		fmt.Fprintf(r.out, "\nGenerated files:\n")
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
	if len(summary.RemovedFiles) > 0 {
		fmt.Fprintf(r.out, "\nRemoved stale files:\n")
		for _, file := range summary.RemovedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	PackagesProcessed int
	ModulesGenerated  int
	ModulesUnchanged  int
	ComponentsFound   int
	InjectionsFound   int
	GeneratedFiles    []string
	RemovedFiles      []string
	OutOfDate         []string
	Unresolved        []string
}
