// Package browser defines the browser session capability the scrapers and drivers consume,
// along with a chromedp-backed live implementation ([CDPSession]) and an offline one
// over static markup ([DocumentSession]).
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionClosed  = errors.New("browser session closed")
	ErrForeignElement = errors.New("element belongs to a different session")
	ErrScopedXPath    = errors.New("xpath locators cannot be scoped to an element")
	ErrUnsupported    = errors.New("operation not supported by session")
)

// Kind is the query language of a [Locator].
type Kind int

const (
	CSS Kind = iota
	XPath
)

func (k Kind) String() string {
	switch k {
	case CSS:
		return "css"
	case XPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// Locator is a single query against the rendered DOM.
type Locator struct {
	Kind Kind
	Expr string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s(%s)", l.Kind, l.Expr)
}

// ByCSS builds a CSS [Locator].
func ByCSS(expr string) Locator { return Locator{Kind: CSS, Expr: expr} }

// ByXPath builds an XPath [Locator].
func ByXPath(expr string) Locator { return Locator{Kind: XPath, Expr: expr} }

// Element is an opaque handle to a DOM node owned by the session that returned it.
type Element interface {
	Describe() string
}

// Session is a live page that can be navigated, queried and interacted with.
//
// Query returns an empty slice, not an error, when nothing matched before the wait elapsed.
// A nil scope queries the whole document.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(ctx context.Context, script string, out any) error
	Query(ctx context.Context, loc Locator, scope Element, wait time.Duration) ([]Element, error)
	Text(ctx context.Context, el Element) (string, error)
	Attribute(ctx context.Context, el Element, name string) (string, error)
	Click(ctx context.Context, el Element) error
	SetValue(ctx context.Context, el Element, value string) error
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Close() error
}
