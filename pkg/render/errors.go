// pkg/render/errors.go

package render

import "fmt"

// RenderError reports a document that could not be produced: a missing or
// unreadable asset, text the selected font cannot draw, or a PDF engine
// failure. Only the current invoice attempt is affected.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render invoice: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
