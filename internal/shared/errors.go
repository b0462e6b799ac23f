package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrSessionUnavailable = fmt.Errorf("browser session unavailable")
	ErrLoginFailed        = fmt.Errorf("login could not be confirmed")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Lookup errors
	ErrNotFound         = fmt.Errorf("not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrMissingArgument    = fmt.Errorf("missing required argument")
	ErrInvalidArgument    = fmt.Errorf("invalid argument")
	ErrUnsupportedFormat  = fmt.Errorf("unsupported format")
	ErrNoCookiesInCommand = fmt.Errorf("no cookies found in curl command")
	ErrPromptClosed       = fmt.Errorf("prompt closed without an answer")
)
