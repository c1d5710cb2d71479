package didi

// Well-known component identifiers of the diagram toolkit. Any other string
// is an equally valid identifier.
const (
	EventBus           = "eventBus"
	Create             = "create"
	ElementFactory     = "elementFactory"
	ElementRegistry    = "elementRegistry"
	LassoTool          = "lassoTool"
	Palette            = "palette"
	Styles             = "styles"
	PathMap            = "pathMap"
	Canvas             = "canvas"
	DefaultRenderer    = "defaultRenderer"
	TextRenderer       = "textRenderer"
	Connect            = "connect"
	ContextPad         = "contextPad"
	Modeling           = "modeling"
	DirectEditing      = "directEditing"
	ResizeHandles      = "resizeHandles"
	CommandStack       = "commandStack"
	ConfigTextRenderer = "config.textRenderer"
)

// InjectorName resolves to the injector doing the resolving.
const InjectorName = "injector"

// KnownComponents lists the well-known identifiers in declaration order.
var KnownComponents = []string{
	EventBus,
	Create,
	ElementFactory,
	ElementRegistry,
	LassoTool,
	Palette,
	Styles,
	PathMap,
	Canvas,
	DefaultRenderer,
	TextRenderer,
	Connect,
	ContextPad,
	Modeling,
	DirectEditing,
	ResizeHandles,
	CommandStack,
	ConfigTextRenderer,
}

// IsKnownComponent reports whether name is one of KnownComponents
func IsKnownComponent(name string) bool {
	for _, known := range KnownComponents {
		if known == name {
			return true
		}
	}
	return false
}
