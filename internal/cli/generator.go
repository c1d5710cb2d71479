package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/toyz/didi/internal/errors"
	"github.com/toyz/didi/internal/generator"
	"github.com/toyz/didi/internal/models"
	"github.com/toyz/didi/internal/parser"
	"github.com/toyz/didi/internal/utils"
	"github.com/toyz/didi/pkg/didi"
)

// ErrOutOfDate is returned by a check run when a generated file would change
var ErrOutOfDate = stderrors.New("generated files are out of date")

// Generator coordinates the CLI generation process
type Generator struct {
	config         Config
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	parser         *parser.Parser
	codeGenerator  *generator.Generator
	cache          *utils.FileCache[*models.PackageMetadata]
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	summary        GenerationSummary
}

// NewGenerator creates a CLI generator for config. A nil diagnostics
// system is replaced by one matching config's verbosity.
func NewGenerator(config Config, diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = diagnosticsFor(config)
	}
	outputFile := config.outputFile()
	return &Generator{
		config:         config,
		scanner:        NewDirectoryScanner(outputFile),
		moduleResolver: NewModuleResolver(),
		parser:         parser.NewParserWithOutput(outputFile),
		codeGenerator: generator.NewGenerator(
			generator.WithOutputFile(outputFile),
			generator.WithFx(config.Fx),
		),
		cache:       utils.NewFileCache[*models.PackageMetadata](utils.DefaultCacheExpiration, utils.DefaultCleanupInterval),
		reporter:    NewDiagnosticReporter(config.Verbose),
		diagnostics: diagnostics,
	}
}

func diagnosticsFor(config Config) *utils.DiagnosticSystem {
	switch {
	case config.Quiet:
		return utils.NewQuietDiagnostics()
	case config.Verbose:
		return utils.NewVerboseDiagnostics()
	default:
		return utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
}

// SetReporter replaces the reporter used for diffs and warnings
func (g *Generator) SetReporter(reporter *DiagnosticReporter) {
	g.reporter = reporter
}

// Reporter returns the reporter errors should be printed with
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// Config returns the configuration the generator was built with
func (g *Generator) Config() Config {
	return g.config
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run executes one complete generation pass
func (g *Generator) Run() error {
	startTime := time.Now()
	g.summary = GenerationSummary{}
	g.diagnostics.Verbose("Starting code generation at %s", startTime.Format("15:04:05"))
	g.diagnostics.Debug("Scanning directories: %v", g.config.directories())

	packages, err := g.Load()
	if err != nil {
		return err
	}

	if err := g.checkDependencies(packages); err != nil {
		return err
	}

	g.diagnostics.PhaseHeader("Generating")
	for _, metadata := range packages {
		if err := g.processPackage(metadata); err != nil {
			return err
		}
	}

	if g.config.Check && len(g.summary.OutOfDate) > 0 {
		return errors.Wrap(errors.GenerationErrorCode,
			fmt.Sprintf("%d generated file(s) need regenerating", len(g.summary.OutOfDate)), ErrOutOfDate).
			WithContext("files", strings.Join(g.summary.OutOfDate, "\n")).
			WithSuggestions("Run 'didi generate' and commit the result")
	}

	g.diagnostics.Verbose("Generation completed in %v", time.Since(startTime))
	g.diagnostics.GenerationComplete(g.summary.ModulesGenerated, g.summary.ModulesUnchanged)
	return nil
}

// Load scans the configured directories and parses every package found.
// Parse errors from all packages are returned together.
func (g *Generator) Load() ([]*models.PackageMetadata, error) {
	module, err := g.moduleResolver.ResolveModule(g.config.ModuleName)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: fmt.Sprintf("Failed to resolve module name: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Check your go.mod file exists and is valid",
				"Ensure you're running from the correct directory",
				"Try specifying --module flag explicitly",
			},
			Context: map[string]any{
				"directories": strings.Join(g.config.directories(), " "),
			},
		}
	}
	g.diagnostics.Debug("Resolved module name: %s", module.Path)

	packageDirs, err := g.scanner.ScanDirectories(g.config.directories())
	if err != nil {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("Failed to scan directories: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Check that the specified directories exist",
				"Ensure you have read permissions for the directories",
			},
			Context: map[string]any{
				"directories": strings.Join(g.config.directories(), " "),
			},
		}
	}
	if len(packageDirs) == 0 {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: "No Go packages found in specified directories",
			Suggestions: []string{
				"Ensure the directories contain Go files",
				"Try scanning parent directories or use './...' pattern",
			},
			Context: map[string]any{
				"directories": strings.Join(g.config.directories(), " "),
			},
		}
	}

	g.diagnostics.Info("Found %d packages to process", len(packageDirs))
	g.diagnostics.Indent()
	for _, dir := range packageDirs {
		g.diagnostics.Verbose("%s", dir)
	}
	g.diagnostics.Unindent()
	g.summary.PackagesProcessed = len(packageDirs)

	var (
		packages []*models.PackageMetadata
		failures []error
	)
	for _, dir := range packageDirs {
		metadata, err := g.parsePackage(dir)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if importPath, err := g.moduleResolver.BuildPackagePath(module, dir); err == nil {
			metadata.ImportPath = importPath
		} else {
			g.diagnostics.Debug("No import path for %s: %v", dir, err)
		}

		g.summary.ComponentsFound += len(metadata.Components) + len(metadata.Factories)
		g.summary.InjectionsFound += len(metadata.Injections)
		packages = append(packages, metadata)
	}
	if len(failures) > 0 {
		return nil, stderrors.Join(failures...)
	}
	return packages, nil
}

// parsePackage parses dir, reusing the previous result while its sources
// are unchanged
func (g *Generator) parsePackage(dir string) (*models.PackageMetadata, error) {
	names, err := g.parser.SourceFiles(dir)
	if err != nil {
		return nil, errors.WrapWithOperation("list", "sources of "+dir, err)
	}
	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name)
	}
	if metadata, ok := g.cache.Get(dir, files...); ok {
		g.diagnostics.Debug("Using cached metadata for %s", dir)
		return metadata, nil
	}

	metadata, err := g.parser.ParseDirectory(dir)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Set(dir, metadata, files...); err != nil {
		g.diagnostics.Debug("Not caching %s: %v", dir, err)
	}
	return metadata, nil
}

// checkDependencies looks for dependencies that no scanned package provides.
// They may still be supplied at runtime by a hand-written module, so they
// are only errors in strict mode.
func (g *Generator) checkDependencies(packages []*models.PackageMetadata) error {
	provided := map[string]bool{didi.InjectorName: true}
	for _, metadata := range packages {
		for _, name := range metadata.ComponentNames() {
			provided[name] = true
		}
	}

	missing := &errors.MultipleErrors{}
	seen := make(map[string]bool)
	report := func(owner string, deps []string, src models.SourceTrait) {
		for _, dep := range deps {
			if provided[dep] {
				continue
			}
			if !seen[dep] {
				seen[dep] = true
				g.summary.Unresolved = append(g.summary.Unresolved, dep)
			}
			loc := errors.SourceLocation{File: src.FileName, Line: src.Line}
			if g.config.Strict {
				missing.Add(errors.DependencyError(owner,
					fmt.Sprintf("dependency '%s' is not provided by any scanned package", dep), loc).
					WithContext("dependency", dep).
					WithSuggestions(
						fmt.Sprintf("Register a component or factory named '%s'", dep),
						"Or drop --strict if a hand-written module provides it",
					))
				continue
			}
			g.reporter.ReportWarning(fmt.Sprintf("%s: %s depends on '%s', which no scanned package provides", loc, owner, dep))
		}
	}

	for _, metadata := range packages {
		for _, inj := range metadata.Injections {
			report(inj.TypeName, inj.Dependencies, inj.SourceTrait)
		}
		for _, factory := range metadata.Factories {
			if factory.Explicit {
				report(factory.Name, factory.Dependencies, factory.SourceTrait)
			}
		}
	}
	slices.Sort(g.summary.Unresolved)
	return missing.ErrOrNil()
}

func (g *Generator) processPackage(metadata *models.PackageMetadata) error {
	target := filepath.Join(metadata.PackagePath, g.config.outputFile())

	if metadata.IsEmpty() {
		return g.removeStale(target)
	}

	module, err := g.codeGenerator.GenerateModule(metadata)
	if err != nil {
		var genErr *models.GeneratorError
		if stderrors.As(err, &genErr) {
			if genErr.Context == nil {
				genErr.Context = make(map[string]any)
			}
			genErr.Context["package_name"] = metadata.PackageName
			genErr.Context["package_path"] = metadata.PackagePath
			return genErr
		}
		return errors.WrapGenerateError("module for package "+metadata.PackageName, err)
	}

	existing, err := os.ReadFile(module.FilePath)
	switch {
	case err == nil && string(existing) == module.Content:
		g.diagnostics.Verbose("%s is up to date", module.FilePath)
		g.summary.ModulesUnchanged++
		return nil
	case err != nil && !os.IsNotExist(err):
		return errors.WrapFileSystemError("read", module.FilePath, err)
	}

	if g.config.Check {
		g.summary.OutOfDate = append(g.summary.OutOfDate, module.FilePath)
		g.reporter.ReportDiff(module.FilePath, module.FilePath+" (generated)", string(existing), module.Content)
		return nil
	}

	g.diagnostics.PhaseProgress("Writing " + module.FilePath)
	if err := utils.FormatAndWriteGoFile(module.FilePath, module.Content); err != nil {
		return errors.WrapFileSystemError("write", module.FilePath, err).
			WithContext("package_name", metadata.PackageName).
			WithSuggestions("Check write permissions for the target directory")
	}
	g.summary.ModulesGenerated++
	g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, module.FilePath)
	return nil
}

// removeStale deletes a generated file left behind by a package that no
// longer carries annotations
func (g *Generator) removeStale(target string) error {
	generated, err := IsGeneratedFile(target)
	if os.IsNotExist(err) || (err == nil && !generated) {
		return nil
	}
	if err != nil {
		return errors.WrapFileSystemError("read", target, err)
	}

	if g.config.Check {
		g.summary.OutOfDate = append(g.summary.OutOfDate, target)
		g.reporter.ReportWarning(target + " should be removed: its package has no annotations")
		return nil
	}
	if err := os.Remove(target); err != nil {
		return errors.WrapFileSystemError("remove", target, err)
	}
	g.diagnostics.PhaseItem("Removed " + target)
	g.summary.RemovedFiles = append(g.summary.RemovedFiles, target)
	return nil
}
