package errors

import stderrors "errors"

// Sentinel causes for the generation pipeline. Taxonomy constructors wrap
// them so callers can match with errors.Is regardless of context.
var (
	ErrConfigInvalid      = stderrors.New("invalid configuration")
	ErrFrontMatterInvalid = stderrors.New("malformed front matter")
	ErrTemplateNotFound   = stderrors.New("template file not found")
	ErrMissingTemplateTag = stderrors.New("missing <template> tag")
	ErrHookNotFound       = stderrors.New("pre-render hook not registered")
	ErrPathOutsideRoots   = stderrors.New("source path outside configured roots")
	ErrSuperseded         = stderrors.New("generation pass superseded by a newer request")
)

// ConfigError reports a missing or unparseable configuration. Always fatal.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal().UserAction()
}

// ContentParseError reports a content unit whose front matter could not be parsed.
func ContentParseError(path string, cause error) *ClassifiedError {
	return NewError(CategoryContent, "cannot parse content").
		WithPath(path).
		WithCause(joinCause(ErrFrontMatterInvalid, cause)).
		UserAction().
		Build()
}

// TemplateNotFound reports an unresolved theme template.
func TemplateNotFound(name, path string, cause error) *ClassifiedError {
	return NewError(CategoryTemplate, "template not found").
		Fatal().
		WithPath(path).
		WithContext("template", name).
		WithCause(joinCause(ErrTemplateNotFound, cause)).
		UserAction().
		Build()
}

// TemplateFormatError reports a theme template that cannot be used as-is.
func TemplateFormatError(path string, cause error) *ClassifiedError {
	return NewError(CategoryTemplate, "invalid theme template").
		Fatal().
		WithPath(path).
		WithCause(cause).
		UserAction().
		Build()
}

// HookError reports a pre-render hook that is unknown or failed while running.
func HookError(hook, path string, cause error) *ClassifiedError {
	return NewError(CategoryTemplate, "pre-render hook failed").
		Fatal().
		WithPath(path).
		WithContext("hook", hook).
		WithCause(cause).
		Build()
}

// WriteError reports a failed output write. Writes never abort a pass.
func WriteError(path string, cause error) *ClassifiedError {
	return NewError(CategoryFileSystem, "cannot write output").
		Warning().
		WithPath(path).
		WithCause(cause).
		Retryable().
		Build()
}

// CopyError reports a failed copy. Copies never abort a pass.
func CopyError(src, dst string, cause error) *ClassifiedError {
	return NewError(CategoryFileSystem, "cannot copy file").
		Warning().
		WithPath(dst).
		WithContext("source", src).
		WithCause(cause).
		Retryable().
		Build()
}

// PathError reports a source path outside both the source and theme roots.
func PathError(path string) *ClassifiedError {
	return NewError(CategoryPath, "unexpected source file location").
		Fatal().
		WithPath(path).
		WithCause(ErrPathOutsideRoots).
		UserAction().
		Build()
}

func joinCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return stderrors.Join(sentinel, cause)
}
