package render

import "fmt"

// TemplateKind names which template failed.
type TemplateKind string

const (
	KindIndex TemplateKind = "index"
	KindPost  TemplateKind = "post"
	KindFeed  TemplateKind = "feed"
	KindPage  TemplateKind = "page"
)

// TemplateError reports a template that failed to parse or execute. Path is
// the template file, or the output file for the built-in feed template.
type TemplateError struct {
	Kind TemplateKind
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	if e.Kind == KindFeed {
		return fmt.Sprintf("the built-in feed template failed while rendering `%s` (this is a bug): %v", e.Path, e.Err)
	}
	return fmt.Sprintf("there is a problem with the %s template at `%s`: %v", e.Kind, e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }
