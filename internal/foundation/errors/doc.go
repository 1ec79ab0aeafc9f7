// Package errors provides the classified error primitives used across staticgen.
//
// Every failure that reaches an operator carries a category (config, content,
// template, path, filesystem, ...), a severity, and structured context such as
// the offending source path. Errors are assembled through a fluent builder:
//
//	err := errors.NewError(errors.CategoryTemplate, "template file not found").
//		Fatal().
//		WithContext("template", name).
//		WithContext("path", file).
//		WithCause(ErrTemplateNotFound).
//		Build()
//
// The taxonomy constructors in taxonomy.go cover the generation pipeline's
// failure kinds (ContentParseError, TemplateNotFound, TemplateFormatError,
// HookError, WriteError, CopyError, PathError, ConfigError).
package errors
