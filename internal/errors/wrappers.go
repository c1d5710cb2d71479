package errors

import "fmt"

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	return Wrap(UnknownErrorCode, fmt.Sprintf("failed to %s %s", operation, item), cause)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", item), cause).
		WithContext("target", item)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	return Wrap(FileSystemErrorCode, fmt.Sprintf("failed to %s file '%s'", operation, path), cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	return Wrap(TemplateErrorCode, fmt.Sprintf("failed to %s template '%s'", operation, templateName), cause).
		WithContext("template", templateName)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	return Wrap(ConfigurationErrorCode, fmt.Sprintf("failed to %s configuration '%s'", operation, configType), cause).
		WithContext("config_type", configType)
}

// DependencyError reports a component whose dependencies cannot be satisfied
func DependencyError(component, message string, loc SourceLocation) *BaseError {
	return Newf(DependencyErrorCode, "component '%s': %s", component, message).
		WithLocation(loc).
		WithContext("component", component)
}
