package templates

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

const (
	// RuntimeImport is the package generated code registers with
	RuntimeImport = "github.com/toyz/didi/pkg/didi"

	// FxImport is imported when the fx adapter is generated
	FxImport = "go.uber.org/fx"

	// GeneratedHeader marks files the cleaner may delete
	GeneratedHeader = "// Code generated by didi. DO NOT EDIT."
)

// Provider kinds understood by the module template
const (
	ProviderType    = "Type"
	ProviderFactory = "Factory"
)

// ModuleData feeds ModuleTemplate
type ModuleData struct {
	PackageName string
	Imports     string
	Injections  []InjectionData
	Providers   []ProviderData
	Init        []string
	Fx          bool
}

// InjectionData is one type and its dependency list
type InjectionData struct {
	TypeName     string
	Dependencies []string
}

// ProviderData is one Provide call on the generated module
type ProviderData struct {
	Name     string
	Kind     string
	Function string
	Deps     []string // only for factories with explicit dependencies
}

// ModuleTemplate renders autogen_didi.go. The output is gofmt'ed afterwards,
// so blank lines here only need to be roughly right.
const ModuleTemplate = GeneratedHeader + `
// This file was automatically generated and should not be modified manually.

package {{.PackageName}}

{{.Imports}}
{{- if .Injections}}
func init() {
{{- range .Injections}}
	didi.AnnotateType[{{.TypeName}}]({{quoteList .Dependencies}})
{{- end}}
}
{{end}}
{{- if .Providers}}
// DidiModule registers the components of package {{.PackageName}}.
var DidiModule = didi.NewModule({{quote .PackageName}})
{{- range .Providers}}.
	Provide({{quote .Name}}, {{provider .}})
{{- end}}
{{- if .Init}}.
	InitWith({{quoteList .Init}})
{{- end}}
{{if .Fx}}
// FxModule exposes DidiModule to an fx application.
func FxModule() fx.Option {
	return didi.FxModule(DidiModule)
}
{{end}}
{{- end}}`

var moduleTemplate = template.Must(template.New("module").Funcs(funcMap).Parse(ModuleTemplate))

var funcMap = template.FuncMap{
	"quote":     strconv.Quote,
	"quoteList": quoteList,
	"provider":  providerExpr,
}

// RenderModule executes ModuleTemplate
func RenderModule(data ModuleData) (string, error) {
	var buf bytes.Buffer
	if err := moduleTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template module: %w", err)
	}
	return buf.String(), nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return strings.Join(quoted, ", ")
}

func providerExpr(p ProviderData) (string, error) {
	switch p.Kind {
	case ProviderType:
		return fmt.Sprintf("didi.Type(%s)", p.Function), nil
	case ProviderFactory:
		if len(p.Deps) == 0 {
			return fmt.Sprintf("didi.Factory(%s)", p.Function), nil
		}
		return fmt.Sprintf("didi.Factory(%s, %s)", p.Function, quoteList(p.Deps)), nil
	default:
		return "", fmt.Errorf("unknown provider kind %q for %s", p.Kind, p.Name)
	}
}
