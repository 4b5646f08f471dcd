package errors

import "fmt"

// ConfigError reports an invalid or missing site configuration value.
// Configuration errors are always fatal: the build cannot proceed
// without a valid site configuration.
func ConfigError(key string, message string) *BuildError {
	e := New(CategoryConfig, SeverityFatal, message)
	return e.WithContext("key", key)
}

// WrapConfigError wraps a lower-level error (typically YAML decoding)
// as a fatal configuration error for the given key.
func WrapConfigError(err error, key string, message string) *BuildError {
	e := Wrap(err, CategoryConfig, SeverityFatal, message)
	return e.WithContext("key", key)
}

// FrontMatterError reports malformed front matter in one content file.
// The offending page is skipped with a warning; the build continues.
func FrontMatterError(path string, cause error) *BuildError {
	e := Wrap(cause, CategoryFrontMatter, SeverityWarning, fmt.Sprintf("malformed front matter in %s", path))
	return e.WithContext("path", path)
}

// RenderError reports a failure rendering a single page.
func RenderError(page string, cause error) *BuildError {
	e := Wrap(cause, CategoryRender, SeverityError, fmt.Sprintf("failed to render %s", page))
	return e.WithContext("page", page)
}

// OutputError reports a failure writing an output artifact. Already
// written artifacts are not rolled back.
func OutputError(path string, cause error) *BuildError {
	e := Wrap(cause, CategoryOutput, SeverityError, fmt.Sprintf("failed to write %s", path))
	return e.WithContext("path", path)
}
