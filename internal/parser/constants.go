package parser

const (
	// DefaultOutputFile is the generated file skipped while parsing
	DefaultOutputFile = "autogen_didi.go"

	// ParamCtor names the constructor of a component
	ParamCtor = "Ctor"

	// ParamDeps lists the dependencies of a factory
	ParamDeps = "Deps"

	// FlagInit marks a component for eager construction
	FlagInit = "Init"
)
