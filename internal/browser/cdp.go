package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/desertthunder/plbridge/internal/shared"
)

const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

const (
	innerTextFn = `function() { return (this.innerText || this.textContent || "").trim(); }`
	getAttrFn   = `function(name) { return this.getAttribute(name) || ""; }`
	clickFn     = `function() { this.scrollIntoView({block: "center"}); this.click(); }`
	setValueFn  = `function(v) {
		this.focus();
		this.value = "";
		this.value = v;
		this.dispatchEvent(new Event("input", {bubbles: true}));
		this.dispatchEvent(new Event("change", {bubbles: true}));
	}`
)

// Options configures a [CDPSession] launch.
type Options struct {
	ExecPath   string          // browser binary; empty lets chromedp find one
	ProfileDir string          // user data dir holding an existing login
	Headless   bool            // run without a window
	Width      int             // window width; defaults to 1920
	Height     int             // window height; defaults to 1080
	PageLoad   time.Duration   // navigation timeout; defaults to 60s
	Cookies    []shared.Cookie // injected before the first navigation
	Logger     *log.Logger
}

// CDPSession drives a Chrome instance over the DevTools protocol.
type CDPSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	pageLoad    time.Duration
	logger      *log.Logger
	closed      bool
}

type cdpElement struct {
	node  *cdp.Node
	owner *CDPSession
}

func (e cdpElement) Describe() string {
	return e.node.FullXPath()
}

// NewCDPSession launches a browser with automation markers suppressed and returns a session
// bound to its first tab.
func NewCDPSession(opts Options) (*CDPSession, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1920, 1080
	}
	if opts.PageLoad == 0 {
		opts.PageLoad = 60 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], launchFlags(opts)...)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(opts.Logger.Debugf),
		chromedp.WithErrorf(opts.Logger.Debugf),
	)

	setup := []chromedp.Action{stealth()}
	if len(opts.Cookies) > 0 {
		setup = append(setup, setCookies(opts.Cookies))
	}
	if err := chromedp.Run(ctx, setup...); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionUnavailable, err)
	}

	opts.Logger.Debug("browser started", "profile", opts.ProfileDir, "headless", opts.Headless, "cookies", len(opts.Cookies))
	return &CDPSession{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		pageLoad:    opts.PageLoad,
		logger:      opts.Logger,
	}, nil
}

func launchFlags(opts Options) []chromedp.ExecAllocatorOption {
	flags := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	}
	if opts.ExecPath != "" {
		flags = append(flags, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.ProfileDir != "" {
		flags = append(flags, chromedp.UserDataDir(opts.ProfileDir))
	}
	return flags
}

func stealth() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriver).Do(ctx)
		return err
	})
}

func setCookies(cookies []shared.Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		params := make([]*network.CookieParam, 0, len(cookies))
		for _, c := range cookies {
			params = append(params, &network.CookieParam{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			})
		}
		return network.SetCookies(params).Do(ctx)
	})
}

// run executes actions on the tab context while honoring cancellation of the caller's ctx.
func (s *CDPSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.closed {
		return ErrSessionClosed
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *CDPSession) node(el Element) (*cdp.Node, error) {
	e, ok := el.(cdpElement)
	if !ok || e.owner != s {
		return nil, ErrForeignElement
	}
	return e.node, nil
}

func (s *CDPSession) callOn(ctx context.Context, el Element, fn string, out any, args ...any) error {
	n, err := s.node(el)
	if err != nil {
		return err
	}
	return s.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		return callFunctionOnNode(ctx, n, fn, out, args...)
	}))
}

// callFunctionOnNode runs fn with this bound to the node's remote object.
func callFunctionOnNode(ctx context.Context, n *cdp.Node, fn string, out any, args ...any) error {
	callArgs, err := callArguments(args...)
	if err != nil {
		return err
	}

	obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
	if err != nil {
		return fmt.Errorf("resolve node: %w", err)
	}
	defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

	p := runtime.CallFunctionOn(fn).
		WithObjectID(obj.ObjectID).
		WithReturnByValue(true).
		WithSilent(true)
	if len(callArgs) > 0 {
		p = p.WithArguments(callArgs)
	}

	res, exc, err := p.Do(ctx)
	if err != nil {
		return err
	}
	if exc != nil {
		return exc
	}
	return decodeResult(res, out)
}

func callArguments(args ...any) ([]*runtime.CallArgument, error) {
	out := make([]*runtime.CallArgument, 0, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("encode argument %d: %w", i, err)
		}
		out = append(out, &runtime.CallArgument{Value: b})
	}
	return out, nil
}

// decodeResult unmarshals a by-value result into out. Undefined results leave out untouched.
func decodeResult(res *runtime.RemoteObject, out any) error {
	if out == nil || res == nil || len(res.Value) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Value, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func (s *CDPSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigate", "url", url)
	if err := s.run(ctx, s.pageLoad, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *CDPSession) Evaluate(ctx context.Context, script string, out any) error {
	return s.run(ctx, 0, chromedp.Evaluate(script, out))
}

// Query waits up to wait for at least one match. A zero wait queries once.
func (s *CDPSession) Query(ctx context.Context, loc Locator, scope Element, wait time.Duration) ([]Element, error) {
	var opts []chromedp.QueryOption
	switch loc.Kind {
	case XPath:
		if scope != nil {
			return nil, ErrScopedXPath
		}
		opts = append(opts, chromedp.BySearch)
	default:
		opts = append(opts, chromedp.ByQueryAll)
	}

	if scope != nil {
		parent, err := s.node(scope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chromedp.FromNode(parent))
	}
	if wait <= 0 {
		opts = append(opts, chromedp.AtLeast(0))
	}

	var nodes []*cdp.Node
	err := s.run(ctx, wait, chromedp.Nodes(loc.Expr, &nodes, opts...))
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}

	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, cdpElement{node: n, owner: s})
	}
	return els, nil
}

func (s *CDPSession) Text(ctx context.Context, el Element) (string, error) {
	var text string
	if err := s.callOn(ctx, el, innerTextFn, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (s *CDPSession) Attribute(ctx context.Context, el Element, name string) (string, error) {
	var value string
	if err := s.callOn(ctx, el, getAttrFn, &value, name); err != nil {
		return "", err
	}
	return value, nil
}

// Click dispatches a real mouse click and falls back to a script click when the node has no
// box model, for example when it is covered by an overlay.
func (s *CDPSession) Click(ctx context.Context, el Element) error {
	n, err := s.node(el)
	if err != nil {
		return err
	}
	err = s.run(ctx, 0, chromedp.MouseClickNode(n))
	if err == nil || ctx.Err() != nil {
		return err
	}
	s.logger.Debug("mouse click failed, using script click", "node", n.FullXPath(), "error", err)
	return s.callOn(ctx, el, clickFn, nil)
}

func (s *CDPSession) SetValue(ctx context.Context, el Element, value string) error {
	return s.callOn(ctx, el, setValueFn, nil, value)
}

func (s *CDPSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, 0, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *CDPSession) HTML(ctx context.Context) (string, error) {
	var markup string
	if err := s.run(ctx, 0, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return markup, nil
}

func (s *CDPSession) URL(ctx context.Context) (string, error) {
	var u string
	if err := s.run(ctx, 0, chromedp.Location(&u)); err != nil {
		return "", err
	}
	return u, nil
}

func (s *CDPSession) Title(ctx context.Context) (string, error) {
	var t string
	if err := s.run(ctx, 0, chromedp.Title(&t)); err != nil {
		return "", err
	}
	return t, nil
}

// Close shuts the browser down. Calling it more than once is a no-op.
func (s *CDPSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	return err
}
