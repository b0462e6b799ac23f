package services

// DOM selectors for the Spotify web player and YouTube Music.
//
// Both UIs are unversioned. Each target lists its fallbacks in priority order; the first
// entry is the selector seen most recently in the wild.
const (
	spotifyContent = `div.contentSpacing, [data-testid="content-spacing"]`

	// Playlist rows on the library page
	spotifyGridRows     = `div[data-testid="grid-container"] div[role="row"]`
	spotifyMainGridRows = `div[class*="main-gridContainer"] div[role="row"]`
	spotifyTracklistBox = `div[data-testid="playlist-tracklist-container"]`
	spotifyGlueCards    = `div[class*="GlueCard"]`

	// Playlist name links inside a row
	spotifyPlaylistName  = `a[data-testid="playlist-name"]`
	spotifyPlaylistTitle = `a[class*="playlist-title"]`
	spotifyRowTitleLink  = `div[class*="main-trackList-rowTitle"] a`

	spotifyPlaylistLinks = `//a[contains(@href, '/playlist/')]`

	// Track rows on a playlist page
	spotifyTrackRow      = `div[data-testid="tracklist-row"]`
	spotifyTrackRowClass = `div[class*="tracklist-row"]`
	spotifyTrackListRow  = `div[class*="TrackListRow"]`

	spotifyTrackLink    = `a[data-testid="internal-track-link"]`
	spotifyTrackNameDiv = `div.tracklist-name`
	spotifyTrackName    = `div.track-name`

	spotifyArtistLink  = `span[data-testid="tracklist-row-artists-album-artist-link"]`
	spotifyArtistName  = `span.artist-name`
	spotifyArtistAnyLn = `div[class*="artist"] a`

	spotifyCookieAccept = `//button[contains(normalize-space(.), 'Accept')]`
	spotifyLoginTestID  = `button[data-testid*="login-button"]`
	spotifyLoginText    = `//button[contains(., 'Log in')] | //a[contains(., 'Log in')] | //span[contains(., 'Log in')]`
	spotifyUserWidget   = `button[data-testid="user-widget-link"], [data-testid="user-widget-avatar"]`
)

const (
	ytmNewPlaylist  = `button[aria-label="New playlist"]`
	ytmTitleInput   = `#title-input input`
	ytmCreateButton = `#create-button button, #create-button paper-button`
	ytmButtons      = `button, tp-yt-paper-button, [role="button"]`
	ytmLibraryItem  = `ytmusic-responsive-list-item-renderer`

	// Save affordance heuristics, in order
	ytmSaveLabel       = `button[aria-label="Save to playlist"]`
	ytmActionButtons   = `#actions button, .actions-container button`
	ytmCardShelfButton = `ytmusic-card-shelf-renderer button`
	ytmSaveSpanButton  = `//span[contains(concat(' ', normalize-space(@class), ' '), ' yt-core-attributed-string ')][normalize-space(.)='Save']/ancestor::button[1]`
	ytmClickable       = `button, [role="button"], tp-yt-paper-item`

	// Playlist selection dialog
	ytmAddDialog     = `ytmusic-add-to-playlist-renderer`
	ytmPaperDialog   = `tp-yt-paper-dialog`
	ytmPopup         = `ytmusic-popup-container`
	ytmTwoRowItem    = `ytmusic-two-row-item-renderer`
	ytmAddToOption   = `ytmusic-playlist-add-to-option-renderer`
	ytmEntryTitle    = `yt-formatted-string.title`
	ytmEntryLink     = `a.yt-simple-endpoint`
	ytmDialogTargets = `a, button, [role="button"]`

	ytmSignIn = `//a[contains(., 'Sign in')] | //tp-yt-paper-button[contains(., 'Sign in')] | //paper-button[contains(., 'Sign in')]`
	ytmAvatar = `button[aria-label="Account"], img[alt*="Avatar"], yt-img-shadow img`
)

// Scripted fallbacks. Each evaluates to true when it performed the step.
const (
	jsClickNewPlaylist = `(() => {
		const btn = document.querySelector('button[aria-label="New playlist"]')
			|| Array.from(document.querySelectorAll('button, tp-yt-paper-button, ytmusic-button-renderer'))
				.find(b => (b.innerText || '').trim().toLowerCase() === 'new playlist');
		if (!btn) return false;
		btn.click();
		return true;
	})()`

	jsSetTitle = `((title) => {
		const input = document.querySelector('#title-input input')
			|| document.querySelector('ytmusic-playlist-form input');
		if (!input) return false;
		input.focus();
		input.value = title;
		input.dispatchEvent(new Event('input', {bubbles: true}));
		return true;
	})(%s)`

	jsClickCreate = `(() => {
		const btn = document.querySelector('#create-button button, yt-button-renderer#create-button button, yt-button-renderer#create-button');
		if (!btn) return false;
		btn.click();
		return true;
	})()`
)
