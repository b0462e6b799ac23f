package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

const blankPage = "<html><head><title></title></head><body></body></html>"

// ScriptFunc answers a script evaluated against a [DocumentSession].
type ScriptFunc func(d *DocumentSession, script string) (any, error)

// ClickFunc reacts to a click on an element matching a registered selector.
type ClickFunc func(d *DocumentSession, el Element) error

// Event is one recorded interaction with a [DocumentSession].
type Event struct {
	Op     string // navigate, click, set, eval
	Target string
	Value  string
}

type scriptHandler struct {
	match string
	fn    ScriptFunc
}

type clickHandler struct {
	selector string
	fn       ClickFunc
}

// DocumentSession is a [Session] over static markup keyed by URL.
//
// CSS locators are answered by goquery and XPath locators by htmlquery, both over the same
// parsed node tree. Clicking an element inside a link follows the link unless a click handler
// claims it. Scripts only run when a handler was registered for them.
type DocumentSession struct {
	pages   map[string]string
	url     string
	doc     *html.Node
	scripts []scriptHandler
	clicks  []clickHandler
	events  []Event
	closed  bool
}

type docElement struct {
	node  *html.Node
	owner *DocumentSession
}

func (e docElement) Describe() string {
	var b strings.Builder
	b.WriteString(e.node.Data)
	for _, attr := range e.node.Attr {
		switch attr.Key {
		case "id":
			b.WriteString("#" + attr.Val)
		case "class":
			for _, c := range strings.Fields(attr.Val) {
				b.WriteString("." + c)
			}
		}
	}
	return b.String()
}

// NewDocumentSession returns a session showing a blank page.
func NewDocumentSession() *DocumentSession {
	d := &DocumentSession{pages: map[string]string{}}
	d.doc, _ = html.Parse(strings.NewReader(blankPage))
	return d
}

// AddPage registers markup served when url is navigated to.
func (d *DocumentSession) AddPage(url, markup string) *DocumentSession {
	d.pages[url] = markup
	return d
}

// HandleScript registers fn for every evaluated script containing match.
func (d *DocumentSession) HandleScript(match string, fn ScriptFunc) *DocumentSession {
	d.scripts = append(d.scripts, scriptHandler{match: match, fn: fn})
	return d
}

// HandleClick registers fn for clicks on elements matching the CSS selector.
func (d *DocumentSession) HandleClick(selector string, fn ClickFunc) *DocumentSession {
	d.clicks = append(d.clicks, clickHandler{selector: selector, fn: fn})
	return d
}

// Load shows markup at url without recording a navigation.
func (d *DocumentSession) Load(url, markup string) error {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	d.url, d.doc = url, doc
	return nil
}

// Append parses markup and appends it to every element matching selector on the current page.
func (d *DocumentSession) Append(selector, markup string) {
	goquery.NewDocumentFromNode(d.doc).Find(selector).AppendHtml(markup)
}

// SetURL changes the reported URL while keeping the current page.
func (d *DocumentSession) SetURL(url string) {
	d.url = url
}

// Events returns every recorded interaction in order.
func (d *DocumentSession) Events() []Event {
	return append([]Event(nil), d.events...)
}

// Count returns how many events with op were recorded.
func (d *DocumentSession) Count(op string) int {
	n := 0
	for _, e := range d.events {
		if e.Op == op {
			n++
		}
	}
	return n
}

func (d *DocumentSession) record(op, target, value string) {
	d.events = append(d.events, Event{Op: op, Target: target, Value: value})
}

func (d *DocumentSession) node(el Element) (*html.Node, error) {
	e, ok := el.(docElement)
	if !ok || e.owner != d {
		return nil, ErrForeignElement
	}
	return e.node, nil
}

func (d *DocumentSession) Navigate(ctx context.Context, url string) error {
	if d.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.record("navigate", url, "")
	markup, ok := d.pages[url]
	if !ok {
		markup = blankPage
	}
	return d.Load(url, markup)
}

func (d *DocumentSession) Evaluate(ctx context.Context, script string, out any) error {
	if d.closed {
		return ErrSessionClosed
	}
	d.record("eval", "", script)
	for _, h := range d.scripts {
		if !strings.Contains(script, h.match) {
			continue
		}
		res, err := h.fn(d, script)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode script result: %w", err)
		}
		return json.Unmarshal(data, out)
	}
	return fmt.Errorf("%w: script evaluation", ErrUnsupported)
}

// Query ignores wait since static markup never changes on its own.
func (d *DocumentSession) Query(ctx context.Context, loc Locator, scope Element, _ time.Duration) ([]Element, error) {
	if d.closed {
		return nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := d.doc
	if scope != nil {
		n, err := d.node(scope)
		if err != nil {
			return nil, err
		}
		root = n
	}

	var nodes []*html.Node
	switch loc.Kind {
	case XPath:
		if scope != nil {
			return nil, ErrScopedXPath
		}
		found, err := htmlquery.QueryAll(root, loc.Expr)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", loc, err)
		}
		nodes = found
	default:
		nodes = goquery.NewDocumentFromNode(root).Find(loc.Expr).Nodes
	}

	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, docElement{node: n, owner: d})
	}
	return els, nil
}

func (d *DocumentSession) Text(_ context.Context, el Element) (string, error) {
	n, err := d.node(el)
	if err != nil {
		return "", err
	}
	text := goquery.NewDocumentFromNode(n).Text()
	return strings.Join(strings.Fields(text), " "), nil
}

func (d *DocumentSession) Attribute(_ context.Context, el Element, name string) (string, error) {
	n, err := d.node(el)
	if err != nil {
		return "", err
	}
	value, _ := goquery.NewDocumentFromNode(n).Attr(name)
	return value, nil
}

func (d *DocumentSession) Click(ctx context.Context, el Element) error {
	if d.closed {
		return ErrSessionClosed
	}
	n, err := d.node(el)
	if err != nil {
		return err
	}
	d.record("click", el.Describe(), "")

	sel := goquery.NewDocumentFromNode(n).Selection
	for _, h := range d.clicks {
		if sel.Is(h.selector) {
			return h.fn(d, el)
		}
	}

	href, ok := sel.Closest("a[href]").Attr("href")
	if !ok {
		return nil
	}
	return d.Navigate(ctx, d.resolve(href))
}

func (d *DocumentSession) resolve(href string) string {
	base, err := url.Parse(d.url)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (d *DocumentSession) SetValue(_ context.Context, el Element, value string) error {
	n, err := d.node(el)
	if err != nil {
		return err
	}
	d.record("set", el.Describe(), value)
	goquery.NewDocumentFromNode(n).SetAttr("value", value)
	return nil
}

// Screenshot renders a single blank pixel; there is no layout to capture offline.
func (d *DocumentSession) Screenshot(_ context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *DocumentSession) HTML(_ context.Context) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *DocumentSession) URL(_ context.Context) (string, error) {
	return d.url, nil
}

func (d *DocumentSession) Title(_ context.Context) (string, error) {
	return strings.TrimSpace(goquery.NewDocumentFromNode(d.doc).Find("title").First().Text()), nil
}

func (d *DocumentSession) Close() error {
	d.closed = true
	return nil
}
