package models

// GeneratedModule is the rendered registration file of one package
type GeneratedModule struct {
	PackageName string // name of the package
	FilePath    string // path where the file should be written
	Content     string // formatted Go source
	Components  int    // components registered by the module
	Injections  int    // types annotated by the init function
}
