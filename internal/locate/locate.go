package locate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/plbridge/internal/browser"
)

// Strategy is one way of finding a UI target.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, s browser.Session, scope browser.Element) ([]browser.Element, error)
}

// Miss records a strategy that matched nothing or failed.
type Miss struct {
	Strategy string
	Err      error
}

// Result is the tagged outcome of [First]: Found with items, or not found.
type Result struct {
	Found    bool
	Items    []browser.Element
	Strategy string // name of the strategy that matched
	Misses   []Miss // strategies tried before the match, in order
}

// Head returns the first matched element, or nil when nothing was found.
func (r Result) Head() browser.Element {
	if !r.Found {
		return nil
	}
	return r.Items[0]
}

// First tries each strategy in order and returns the first one's results that contain at least one element.
//
// Strategy errors count as misses. Only cancellation of ctx stops the walk early, in which case
// the result is not found.
func First(ctx context.Context, s browser.Session, scope browser.Element, strategies ...Strategy) Result {
	var res Result
	for _, st := range strategies {
		if ctx.Err() != nil {
			res.Misses = append(res.Misses, Miss{Strategy: st.Name(), Err: ctx.Err()})
			return res
		}

		items, err := st.Attempt(ctx, s, scope)
		if err == nil && len(items) > 0 {
			res.Found, res.Items, res.Strategy = true, items, st.Name()
			return res
		}
		res.Misses = append(res.Misses, Miss{Strategy: st.Name(), Err: err})
	}
	return res
}

// Query is a declarative strategy backed by a single locator.
type Query struct {
	Label   string
	Locator browser.Locator
	Wait    time.Duration // bounded wait for the first match; zero queries once
}

// CSS returns a [Query] for a CSS selector.
func CSS(label, expr string) Query {
	return Query{Label: label, Locator: browser.ByCSS(expr)}
}

// XPath returns a [Query] for an XPath expression. It can only run against the whole document.
func XPath(label, expr string) Query {
	return Query{Label: label, Locator: browser.ByXPath(expr)}
}

// Within returns a copy of q that waits up to d for a match.
func (q Query) Within(d time.Duration) Query {
	q.Wait = d
	return q
}

func (q Query) Name() string {
	if q.Label != "" {
		return q.Label
	}
	return q.Locator.String()
}

func (q Query) Attempt(ctx context.Context, s browser.Session, scope browser.Element) ([]browser.Element, error) {
	return s.Query(ctx, q.Locator, scope, q.Wait)
}

// Predicate decides whether a located element is kept.
type Predicate func(ctx context.Context, s browser.Session, el browser.Element) bool

// Filtered narrows a query's matches with a predicate.
type Filtered struct {
	Query
	Keep Predicate
}

// Where returns a [Filtered] strategy keeping matches of q that satisfy keep.
func Where(q Query, keep Predicate) Filtered {
	return Filtered{Query: q, Keep: keep}
}

func (f Filtered) Attempt(ctx context.Context, s browser.Session, scope browser.Element) ([]browser.Element, error) {
	items, err := f.Query.Attempt(ctx, s, scope)
	if err != nil {
		return nil, err
	}

	var kept []browser.Element
	for _, el := range items {
		if f.Keep(ctx, s, el) {
			kept = append(kept, el)
		}
	}
	return kept, nil
}

// TextContains keeps elements whose visible text contains sub.
func TextContains(sub string) Predicate {
	return func(ctx context.Context, s browser.Session, el browser.Element) bool {
		text, err := s.Text(ctx, el)
		return err == nil && strings.Contains(text, sub)
	}
}

// TextEqualsFold is [TextEquals] ignoring case.
func TextEqualsFold(want string) Predicate {
	return func(ctx context.Context, s browser.Session, el browser.Element) bool {
		text, err := s.Text(ctx, el)
		return err == nil && strings.EqualFold(strings.TrimSpace(text), want)
	}
}

// TextEquals keeps elements whose trimmed text equals want.
func TextEquals(want string) Predicate {
	return func(ctx context.Context, s browser.Session, el browser.Element) bool {
		text, err := s.Text(ctx, el)
		return err == nil && strings.TrimSpace(text) == want
	}
}

// AttrEquals keeps elements whose attribute name has the value want.
func AttrEquals(name, want string) Predicate {
	return func(ctx context.Context, s browser.Session, el browser.Element) bool {
		v, err := s.Attribute(ctx, el, name)
		return err == nil && v == want
	}
}

// AttrContains keeps elements whose attribute name contains sub.
func AttrContains(name, sub string) Predicate {
	return func(ctx context.Context, s browser.Session, el browser.Element) bool {
		v, err := s.Attribute(ctx, el, name)
		return err == nil && strings.Contains(v, sub)
	}
}

// AnyOf keeps elements satisfying at least one predicate.
func AnyOf(preds ...Predicate) Predicate {
	return func(ctx context.Context, s browser.Session, el browser.Element) bool {
		for _, p := range preds {
			if p(ctx, s, el) {
				return true
			}
		}
		return false
	}
}

// markAttr tags elements found by a [Script] strategy so they can be queried declaratively.
const markAttr = "data-plbridge-hit"

// Script is a strategy that runs a page script to find elements.
//
// Source must be a JavaScript expression evaluating to an array of elements. Matches are
// tagged with a marker attribute and then fetched with an ordinary query, so scripted and
// declarative strategies return the same element handles.
type Script struct {
	Label  string
	Source string
}

func (sc Script) Name() string { return sc.Label }

func (sc Script) Attempt(ctx context.Context, s browser.Session, scope browser.Element) ([]browser.Element, error) {
	token := fmt.Sprintf("%s-%d", strings.ReplaceAll(sc.Label, " ", "-"), time.Now().UnixNano())
	script := fmt.Sprintf(`(() => {
		const found = Array.from((%s) || []);
		found.forEach(el => el.setAttribute(%q, %q));
		return found.length;
	})()`, sc.Source, markAttr, token)

	var n int
	if err := s.Evaluate(ctx, script, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.Query(ctx, browser.ByCSS(fmt.Sprintf("[%s=%q]", markAttr, token)), scope, 0)
}

// Yield is one extraction pattern producing values of T.
type Yield[T any] struct {
	Name    string
	Extract func(ctx context.Context) ([]T, error)
}

// FirstYield runs extraction patterns in order and returns the values of the first one that
// produced any, along with its name. Errors count as empty yields.
func FirstYield[T any](ctx context.Context, attempts ...Yield[T]) ([]T, string) {
	for _, a := range attempts {
		if ctx.Err() != nil {
			return nil, ""
		}
		values, err := a.Extract(ctx)
		if err == nil && len(values) > 0 {
			return values, a.Name
		}
	}
	return nil, ""
}
