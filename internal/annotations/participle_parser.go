package annotations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Prefix starts every annotation comment
const Prefix = "//didi::"

// annotationNode is the grammar root: the prefix, the annotation kind, then
// bare words and -Name[=value[,value...]] parameters in any order.
type annotationNode struct {
	Pos  lexer.Position
	Kind string     `parser:"Prefix @Ident"`
	Args []*argNode `parser:"@@*"`
}

type argNode struct {
	Pos   lexer.Position
	Param *paramNode `parser:"  @@"`
	Word  *string    `parser:"| @Ident"`
}

type paramNode struct {
	Name   string   `parser:"Dash @Ident"`
	Values []string `parser:"( Equals @(String | Ident) ( Comma @(String | Ident) )* )?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*didi::`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// ParticipleParser parses //didi:: comments and checks them against the
// schemas of its registry.
type ParticipleParser struct {
	grammar  *participle.Parser[annotationNode]
	registry AnnotationRegistry
}

// NewParticipleParser creates a parser. A nil registry means DefaultRegistry.
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &ParticipleParser{
		grammar: participle.MustBuild[annotationNode](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether comment looks like a //didi:: annotation.
// Malformed annotations still count so they can be reported.
func IsAnnotation(comment string) bool {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(text[2:]), "didi::")
}

// ParseAnnotation parses one comment found at location
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)

	node, err := p.grammar.ParseString(location.File, raw)
	if err != nil {
		return nil, p.syntaxError(err, location)
	}

	annotationType, err := ParseAnnotationType(node.Kind)
	if err != nil || !p.registry.IsRegistered(annotationType) {
		return nil, &SchemaError{
			Msg:  fmt.Sprintf("unknown annotation type '%s'", node.Kind),
			Loc:  location,
			Hint: "Supported annotation types: inject, component, factory",
		}
	}
	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, &SchemaError{Msg: err.Error(), Loc: location}
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]any),
		Location:   location,
		Raw:        raw,
	}

	for _, arg := range node.Args {
		argLoc := offset(location, arg.Pos)

		if arg.Word != nil {
			if schema.Positional.Validator != nil {
				if err := schema.Positional.Validator(*arg.Word); err != nil {
					return nil, &ValidationError{
						Parameter: schema.Positional.Name,
						Expected:  "a component identifier",
						Actual:    *arg.Word,
						Loc:       argLoc,
						Hint:      err.Error(),
					}
				}
			}
			parsed.Positional = append(parsed.Positional, *arg.Word)
			continue
		}

		name := arg.Param.Name
		spec, ok := schema.Parameters[name]
		if !ok {
			return nil, &SchemaError{
				Msg:  fmt.Sprintf("unknown parameter '%s' for %s annotation", name, annotationType),
				Loc:  argLoc,
				Hint: schemaHint(p.registry, annotationType),
			}
		}
		if parsed.HasParameter(name) {
			return nil, &SchemaError{
				Msg: fmt.Sprintf("parameter '%s' given more than once", name),
				Loc: argLoc,
			}
		}

		value, err := convertParameter(spec, arg.Param.Values)
		if err != nil {
			return nil, &ValidationError{
				Parameter: name,
				Expected:  spec.Type.String(),
				Actual:    strings.Join(arg.Param.Values, ","),
				Loc:       argLoc,
				Hint:      err.Error(),
			}
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return nil, &ValidationError{
					Parameter: name,
					Expected:  spec.Description,
					Actual:    strings.Join(arg.Param.Values, ","),
					Loc:       argLoc,
					Hint:      err.Error(),
				}
			}
		}
		parsed.Parameters[name] = value
	}

	if !schema.Positional.accepts(len(parsed.Positional)) {
		return nil, &SchemaError{
			Msg: fmt.Sprintf("%s annotation takes %s %s argument(s), got %d",
				annotationType, schema.Positional.describe(), schema.Positional.Name, len(parsed.Positional)),
			Loc:  location,
			Hint: schemaHint(p.registry, annotationType),
		}
	}

	for _, name := range sortedParameterNames(schema.Parameters) {
		if schema.Parameters[name].Required && !parsed.HasParameter(name) {
			return nil, &SchemaError{
				Msg:  fmt.Sprintf("missing required parameter '%s' for %s annotation", name, annotationType),
				Loc:  location,
				Hint: schemaHint(p.registry, annotationType),
			}
		}
	}

	for _, validate := range schema.Validators {
		if err := validate(parsed); err != nil {
			return nil, &ValidationError{
				Parameter: annotationType.String(),
				Expected:  "a consistent annotation",
				Actual:    raw,
				Loc:       location,
				Hint:      err.Error(),
			}
		}
	}

	return parsed, nil
}

// convertParameter turns the raw values of -Name[=values] into the schema type
func convertParameter(spec ParameterSpec, values []string) (any, error) {
	switch spec.Type {
	case BoolType:
		switch len(values) {
		case 0:
			return true, nil
		case 1:
			b, err := strconv.ParseBool(values[0])
			if err != nil {
				return nil, fmt.Errorf("'%s' is not a boolean", values[0])
			}
			return b, nil
		default:
			return nil, fmt.Errorf("a flag takes at most one value")
		}
	case StringType:
		switch len(values) {
		case 0:
			if def, ok := spec.DefaultValue.(string); ok {
				return def, nil
			}
			return nil, fmt.Errorf("a value is required, write -Name=value")
		case 1:
			return values[0], nil
		default:
			return nil, fmt.Errorf("expected a single value")
		}
	case StringSliceType:
		if len(values) == 0 {
			return nil, fmt.Errorf("at least one value is required")
		}
		return append([]string(nil), values...), nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", spec.Type)
	}
}

func (p *ParticipleParser) syntaxError(err error, location SourceLocation) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		return &SyntaxError{
			Msg:  perr.Message(),
			Loc:  offset(location, perr.Position()),
			Hint: syntaxHint(perr.Message()),
		}
	}
	return &SyntaxError{Msg: err.Error(), Loc: location, Hint: syntaxHint(err.Error())}
}

// offset moves location to pos, a position inside the comment text
func offset(location SourceLocation, pos lexer.Position) SourceLocation {
	if pos.Line <= 1 && pos.Column > 0 {
		location.Column += pos.Column - 1
	}
	return location
}
