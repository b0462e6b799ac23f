package locate

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/plbridge/internal/browser"
)

var (
	ErrNoAction    = errors.New("no action in cascade succeeded")
	ErrNoMatch     = errors.New("no element matched")
	ErrScriptNoop  = errors.New("script reported nothing to do")
	ErrCheckFailed = errors.New("post-condition not met")
)

// Check is a post-condition shared by every action in a cascade.
type Check func(ctx context.Context, s browser.Session) bool

// Action is one way of performing a UI step.
type Action struct {
	Name string
	Run  func(ctx context.Context, s browser.Session) error
}

// Attempt records one cascade action that did not complete.
type Attempt struct {
	Action string
	Err    error
}

// CascadeError lists every failed attempt of a cascade that had no winner.
type CascadeError struct {
	Attempts []Attempt
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%v after %d attempts", ErrNoAction, len(e.Attempts))
}

func (e *CascadeError) Unwrap() error { return ErrNoAction }

// Cascade runs actions in order until one returns nil and check (when non-nil) holds afterwards.
//
// It returns the winning action's name. Cancellation of ctx ends the cascade with ctx.Err().
func Cascade(ctx context.Context, s browser.Session, check Check, actions ...Action) (string, error) {
	var failed []Attempt
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		err := a.Run(ctx, s)
		if err == nil && check != nil && !check(ctx, s) {
			err = ErrCheckFailed
		}
		if err == nil {
			return a.Name, nil
		}
		failed = append(failed, Attempt{Action: a.Name, Err: err})
	}
	return "", &CascadeError{Attempts: failed}
}

// ClickFirst locates a target with [First] and clicks the first match.
func ClickFirst(name string, strategies ...Strategy) Action {
	return Action{
		Name: name,
		Run: func(ctx context.Context, s browser.Session) error {
			res := First(ctx, s, nil, strategies...)
			if !res.Found {
				return ErrNoMatch
			}
			return s.Click(ctx, res.Head())
		},
	}
}

// FillFirst locates an input with [First] and replaces its value.
func FillFirst(name, value string, strategies ...Strategy) Action {
	return Action{
		Name: name,
		Run: func(ctx context.Context, s browser.Session) error {
			res := First(ctx, s, nil, strategies...)
			if !res.Found {
				return ErrNoMatch
			}
			return s.SetValue(ctx, res.Head(), value)
		},
	}
}

// RunScript is a scripted fallback. The script must evaluate to true when it performed the step.
func RunScript(name, source string) Action {
	return Action{
		Name: name,
		Run: func(ctx context.Context, s browser.Session) error {
			var ok bool
			if err := s.Evaluate(ctx, source, &ok); err != nil {
				return err
			}
			if !ok {
				return ErrScriptNoop
			}
			return nil
		},
	}
}
