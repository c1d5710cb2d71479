package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/toyz/didi/internal/annotations"
	"github.com/toyz/didi/internal/models"
)

// Parser extracts //didi:: annotations from Go source and resolves them into
// package metadata.
type Parser struct {
	fileSet     *token.FileSet
	annotations *annotations.ParticipleParser
	outputFile  string
}

// NewParser creates a parser that skips DefaultOutputFile
func NewParser() *Parser {
	return NewParserWithOutput(DefaultOutputFile)
}

// NewParserWithOutput creates a parser that skips the generated file named
// outputFile.
func NewParserWithOutput(outputFile string) *Parser {
	if outputFile == "" {
		outputFile = DefaultOutputFile
	}
	return &Parser{
		fileSet:     token.NewFileSet(),
		annotations: annotations.NewParticipleParser(annotations.DefaultRegistry()),
		outputFile:  outputFile,
	}
}

// ParseSource parses a single file held in memory
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	return p.collect(file.Name.Name, "./", []*ast.File{file})
}

// ParseDirectory parses the non-test Go files of one package directory
func (p *Parser) ParseDirectory(path string) (*models.PackageMetadata, error) {
	names, err := p.SourceFiles(path)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no Go packages found in directory %s", path)
	}

	var (
		files       []*ast.File
		packageName string
	)
	for _, name := range names {
		file, err := parser.ParseFile(p.fileSet, filepath.Join(path, name), nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Join(path, name), err)
		}
		if packageName != "" && file.Name.Name != packageName {
			return nil, fmt.Errorf("multiple packages found in directory %s: %s and %s", path, packageName, file.Name.Name)
		}
		packageName = file.Name.Name
		files = append(files, file)
	}

	return p.collect(packageName, path, files)
}

// SourceFiles lists the file names ParseDirectory reads from path, sorted
func (p *Parser) SourceFiles(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, "_test.go") || name == p.outputFile {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (p *Parser) collect(packageName, path string, files []*ast.File) (*models.PackageMetadata, error) {
	c := &collector{
		fset:  p.fileSet,
		ann:   p.annotations,
		funcs: make(map[string]*ast.FuncDecl),
		meta: &models.PackageMetadata{
			PackageName: packageName,
			PackagePath: path,
		},
	}

	for _, file := range files {
		c.file(file)
	}
	c.resolve()

	if len(c.errs) > 0 {
		return c.meta, &Errors{Package: packageName, List: c.errs}
	}
	return c.meta, nil
}

// collector accumulates metadata and every error found in one package
type collector struct {
	fset  *token.FileSet
	ann   *annotations.ParticipleParser
	meta  *models.PackageMetadata
	funcs map[string]*ast.FuncDecl
	errs  []*models.GeneratorError
}

func (c *collector) file(file *ast.File) {
	for _, decl := range file.Decls {
		switch node := decl.(type) {
		case *ast.GenDecl:
			if node.Tok != token.TYPE {
				continue
			}
			for _, spec := range node.Specs {
				typeSpec := spec.(*ast.TypeSpec)
				doc := typeSpec.Doc
				if doc == nil && len(node.Specs) == 1 {
					doc = node.Doc
				}
				c.typeDecl(typeSpec, doc)
			}
		case *ast.FuncDecl:
			if node.Recv == nil {
				c.funcs[node.Name.Name] = node
			}
			c.funcDecl(node)
		}
	}
}

// annotationsIn parses every //didi:: comment of doc, recording failures
func (c *collector) annotationsIn(doc *ast.CommentGroup) []*annotations.ParsedAnnotation {
	if doc == nil {
		return nil
	}

	var parsed []*annotations.ParsedAnnotation
	for _, comment := range doc.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		pos := c.fset.Position(comment.Pos())
		loc := annotations.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}

		ann, err := c.ann.ParseAnnotation(comment.Text, loc)
		if err != nil {
			c.annotationError(err, loc)
			continue
		}
		parsed = append(parsed, ann)
	}
	return parsed
}

func (c *collector) typeDecl(spec *ast.TypeSpec, doc *ast.CommentGroup) {
	typeName := spec.Name.Name

	for _, ann := range c.annotationsIn(doc) {
		src := sourceOf(ann)
		if spec.TypeParams != nil {
			c.fail(models.ErrorTypeValidation, src,
				fmt.Sprintf("generic type %s cannot be annotated", typeName),
				"Annotate a named instantiation instead, e.g. type IntCache = Cache[int]")
			continue
		}

		switch ann.Type {
		case annotations.InjectAnnotation:
			if _, exists := c.meta.Injection(typeName); exists {
				c.fail(models.ErrorTypeValidation, src,
					fmt.Sprintf("type %s has more than one //didi::inject annotation", typeName),
					"Merge the identifiers into a single annotation")
				continue
			}
			c.meta.Injections = append(c.meta.Injections, models.InjectionMetadata{
				TypeName:     typeName,
				Dependencies: slices.Clone(ann.Positional),
				SourceTrait:  src,
			})

		case annotations.ComponentAnnotation:
			name := ann.Arg(0)
			if name == "" {
				name = models.DefaultComponentName(typeName)
			}
			c.meta.Components = append(c.meta.Components, models.ComponentMetadata{
				Name:        name,
				TypeName:    typeName,
				Constructor: ann.GetString(ParamCtor, models.DefaultConstructorName(typeName)),
				Init:        ann.GetBool(FlagInit),
				SourceTrait: src,
			})

		case annotations.FactoryAnnotation:
			c.fail(models.ErrorTypeValidation, src,
				fmt.Sprintf("//didi::factory cannot annotate type %s", typeName),
				"Put //didi::factory on a function, or use //didi::component on the type")
		}
	}
}

func (c *collector) funcDecl(fn *ast.FuncDecl) {
	for _, ann := range c.annotationsIn(fn.Doc) {
		src := sourceOf(ann)

		if fn.Recv != nil {
			c.fail(models.ErrorTypeValidation, src,
				fmt.Sprintf("method %s cannot be annotated", fn.Name.Name),
				"Annotate a package-level function instead")
			continue
		}
		if ann.Type != annotations.FactoryAnnotation {
			c.fail(models.ErrorTypeValidation, src,
				fmt.Sprintf("//didi::%s cannot annotate function %s", ann.Type, fn.Name.Name),
				"Put //didi::"+ann.Type.String()+" on the type the function returns")
			continue
		}

		c.meta.Factories = append(c.meta.Factories, models.FactoryMetadata{
			Name:         ann.Arg(0),
			FunctionName: fn.Name.Name,
			Dependencies: ann.GetStringSlice(ParamDeps),
			Explicit:     ann.HasParameter(ParamDeps),
			Init:         ann.GetBool(FlagInit),
			SourceTrait:  src,
		})
	}
}

// resolve checks constructors against inject lists once all files are read
func (c *collector) resolve() {
	seen := make(map[string]models.SourceTrait)
	claim := func(name string, src models.SourceTrait) {
		if prev, dup := seen[name]; dup {
			c.fail(models.ErrorTypeValidation, src,
				fmt.Sprintf("component '%s' is registered twice (first at %s:%d)", name, prev.FileName, prev.Line),
				"Give one of them a different name")
			return
		}
		seen[name] = src
	}

	for i := range c.meta.Components {
		comp := &c.meta.Components[i]
		claim(comp.Name, comp.SourceTrait)
		c.resolveComponent(comp)
	}
	for i := range c.meta.Factories {
		factory := &c.meta.Factories[i]
		claim(factory.Name, factory.SourceTrait)
		c.resolveFactory(factory)
	}
}

func (c *collector) resolveComponent(comp *models.ComponentMetadata) {
	fn, ok := c.funcs[comp.Constructor]
	if !ok {
		c.fail(models.ErrorTypeValidation, comp.SourceTrait,
			fmt.Sprintf("constructor %s for component '%s' not found", comp.Constructor, comp.Name),
			fmt.Sprintf("Add func %s(...) *%s to the package", comp.Constructor, comp.TypeName),
			"Or name an existing function with -Ctor=<Func>")
		return
	}

	sig, err := signatureOf(fn)
	if err != nil {
		c.fail(models.ErrorTypeValidation, comp.SourceTrait,
			fmt.Sprintf("constructor %s: %v", comp.Constructor, err))
		return
	}
	if sig.results[0] != comp.TypeName && sig.results[0] != "*"+comp.TypeName {
		c.fail(models.ErrorTypeValidation, comp.SourceTrait,
			fmt.Sprintf("constructor %s returns %s, want %s or *%s", comp.Constructor, sig.results[0], comp.TypeName, comp.TypeName))
		return
	}
	comp.ParamCount = sig.params
	comp.ReturnsError = sig.returnsError()

	inj, annotated := c.meta.Injection(comp.TypeName)
	switch {
	case annotated && len(inj.Dependencies) != sig.params:
		c.fail(models.ErrorTypeValidation, inj.SourceTrait,
			fmt.Sprintf("//didi::inject on %s lists %d identifier(s) but %s takes %d parameter(s)",
				comp.TypeName, len(inj.Dependencies), comp.Constructor, sig.params),
			"List one identifier per constructor parameter, in parameter order")
	case annotated:
		comp.Dependencies = slices.Clone(inj.Dependencies)
	case sig.params > 0:
		c.fail(models.ErrorTypeValidation, comp.SourceTrait,
			fmt.Sprintf("constructor %s takes %d parameter(s) but %s has no //didi::inject annotation",
				comp.Constructor, sig.params, comp.TypeName),
			fmt.Sprintf("Add //didi::inject <identifier>... above type %s", comp.TypeName))
	}
}

func (c *collector) resolveFactory(factory *models.FactoryMetadata) {
	fn := c.funcs[factory.FunctionName]

	sig, err := signatureOf(fn)
	if err != nil {
		c.fail(models.ErrorTypeValidation, factory.SourceTrait,
			fmt.Sprintf("factory %s: %v", factory.FunctionName, err))
		return
	}
	factory.ResultType = sig.results[0]
	factory.ParamCount = sig.params
	factory.ReturnsError = sig.returnsError()

	if factory.Explicit {
		if len(factory.Dependencies) != sig.params {
			c.fail(models.ErrorTypeValidation, factory.SourceTrait,
				fmt.Sprintf("factory '%s' lists %d dependencies but %s takes %d parameter(s)",
					factory.Name, len(factory.Dependencies), factory.FunctionName, sig.params))
		}
		return
	}
	if sig.params == 0 {
		return
	}

	inj, annotated := c.meta.Injection(strings.TrimPrefix(factory.ResultType, "*"))
	if !annotated {
		c.fail(models.ErrorTypeValidation, factory.SourceTrait,
			fmt.Sprintf("factory '%s' takes %d parameter(s) but names no dependencies", factory.Name, sig.params),
			"Add -Deps=<identifier>,... to the annotation",
			"Or annotate the result type with //didi::inject")
		return
	}
	if len(inj.Dependencies) != sig.params {
		c.fail(models.ErrorTypeValidation, inj.SourceTrait,
			fmt.Sprintf("//didi::inject on %s lists %d identifier(s) but factory %s takes %d parameter(s)",
				inj.TypeName, len(inj.Dependencies), factory.FunctionName, sig.params))
		return
	}
	// The runtime reads the list from the result type; nothing to emit.
	factory.Dependencies = slices.Clone(inj.Dependencies)
}

func (c *collector) fail(errType models.ErrorType, src models.SourceTrait, message string, suggestions ...string) {
	err := models.NewGeneratorError(errType, src, message, nil)
	c.errs = append(c.errs, err.WithSuggestions(suggestions...))
}

func (c *collector) annotationError(err error, loc annotations.SourceLocation) {
	genErr := &models.GeneratorError{
		Type:    models.ErrorTypeValidation,
		File:    loc.File,
		Line:    loc.Line,
		Message: err.Error(),
		Cause:   err,
	}
	if annErr, ok := err.(annotations.AnnotationError); ok {
		if annErr.Code() == annotations.SyntaxErrorCode {
			genErr.Type = models.ErrorTypeAnnotationSyntax
		}
		genErr.Line = annErr.Location().Line
		genErr.Message = annotationMessage(annErr)
		if hint := annErr.Suggestion(); hint != "" {
			genErr.Suggestions = []string{hint}
		}
	}
	c.errs = append(c.errs, genErr)
}

// annotationMessage drops the location prefix the reporter prints separately
func annotationMessage(err annotations.AnnotationError) string {
	switch e := err.(type) {
	case *annotations.SyntaxError:
		return "syntax error: " + e.Msg
	case *annotations.SchemaError:
		return e.Msg
	case *annotations.ValidationError:
		return fmt.Sprintf("invalid %s '%s'", e.Parameter, e.Actual)
	default:
		return err.Error()
	}
}

func sourceOf(ann *annotations.ParsedAnnotation) models.SourceTrait {
	return models.SourceTrait{FileName: ann.Location.File, Line: ann.Location.Line}
}

type signature struct {
	params  int
	results []string
}

func (s signature) returnsError() bool {
	return len(s.results) == 2
}

// signatureOf checks fn can serve as a constructor: T or (T, error), no
// variadic or type parameters.
func signatureOf(fn *ast.FuncDecl) (signature, error) {
	var sig signature
	if fn.Type.TypeParams != nil {
		return sig, fmt.Errorf("generic functions cannot be registered")
	}

	for _, field := range fn.Type.Params.List {
		if _, ok := field.Type.(*ast.Ellipsis); ok {
			return sig, fmt.Errorf("variadic parameters are not supported")
		}
		sig.params += max(len(field.Names), 1)
	}

	if fn.Type.Results != nil {
		for _, field := range fn.Type.Results.List {
			for range max(len(field.Names), 1) {
				sig.results = append(sig.results, types.ExprString(field.Type))
			}
		}
	}

	switch {
	case len(sig.results) == 1 && sig.results[0] != "error":
		return sig, nil
	case len(sig.results) == 2 && sig.results[1] == "error" && sig.results[0] != "error":
		return sig, nil
	default:
		return sig, fmt.Errorf("must return T or (T, error), got (%s)", strings.Join(sig.results, ", "))
	}
}
