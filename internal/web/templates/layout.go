package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Page wraps body in the document layout.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/static/dashboard.css"></head><body><main class="container">`)
		h.component(body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorAlert renders a coded error message with its suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="alert-action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="alert-code">Code: `)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
