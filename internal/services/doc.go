// Package services scrapes the Spotify web player and drives the YouTube Music web UI.
//
// Neither service's documented API is used. Everything goes through a [browser.Session] that
// has already been logged in, and every lookup goes through a [locate] cascade so that a
// changed selector degrades to a fallback instead of failing the run.
//
// # Source
//
// [SpotifyScraper] implements [Source]. It enumerates the playlist library and the tracks of
// each playlist, scrolling lazily rendered lists first. Empty results come with a diagnostic
// capture rather than an error.
//
// # Destination
//
// [YouTubeMusicDriver] implements [Destination]. Creating a playlist walks the library's
// "New playlist" form; when the new playlist's ID cannot be confirmed it returns
// [SentinelPlaylistID], and tracks added against the sentinel are only searched for.
//
// Saving a track tries five save-button heuristics in order, then picks the dialog entry by
// exact title, then by containment, and finally (when enabled) the first entry. The last step
// assumes the newest playlist is listed first, which the UI does not guarantee; it is logged
// and reported through [models.Attachment.Assumed].
//
// # Login
//
// [SpotifyLogin] and [YouTubeMusicLogin] prepare sessions before the core runs. Credentials are
// entered by a person in the browser window; the code only opens the right page and waits via
// a [Prompter].
//
// # Error Handling
//
// Only session failures and cancellation are returned as errors:
//   - [shared.ErrSessionUnavailable] : navigation failed while scraping
//   - [shared.ErrLoginFailed] : a login page could not be opened
//
// Everything else is logged and degraded.
package services
