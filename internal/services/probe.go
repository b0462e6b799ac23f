package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/locate"
	"github.com/desertthunder/plbridge/internal/shared"
)

// ProbeTargets names the UI targets [Probe] can replay.
var ProbeTargets = []string{"playlists", "tracks", "save", "dialog"}

// ProbeReport describes which strategy, if any, located a target on the current page.
type ProbeReport struct {
	Target   string   `json:"target"`
	Found    bool     `json:"found"`
	Strategy string   `json:"strategy,omitempty"`
	Count    int      `json:"count"`
	Tried    []string `json:"tried"`
}

func probeStrategies(target string) ([]locate.Strategy, error) {
	switch target {
	case "playlists":
		var strategies []locate.Strategy
		for _, q := range playlistRowPatterns() {
			strategies = append(strategies, q)
		}
		return append(strategies, locate.XPath("playlist links", spotifyPlaylistLinks)), nil
	case "tracks":
		return trackRowStrategies(), nil
	case "save":
		return saveStrategies(0), nil
	case "dialog":
		return dialogStrategies(0), nil
	default:
		return nil, fmt.Errorf("%w: unknown probe target %q (want one of %v)", shared.ErrInvalidArgument, target, ProbeTargets)
	}
}

// Probe replays the locator strategies for target against the page loaded in s.
//
// It is meant for saved diagnostic dumps: the result shows which fallback a page still
// satisfies without driving a live browser.
func Probe(ctx context.Context, s browser.Session, target string) (ProbeReport, error) {
	strategies, err := probeStrategies(target)
	if err != nil {
		return ProbeReport{}, err
	}

	res := locate.First(ctx, s, nil, strategies...)
	if err := ctx.Err(); err != nil {
		return ProbeReport{}, err
	}

	report := ProbeReport{Target: target, Found: res.Found, Strategy: res.Strategy, Count: len(res.Items)}
	for _, m := range res.Misses {
		report.Tried = append(report.Tried, m.Strategy)
	}
	if res.Found {
		report.Tried = append(report.Tried, res.Strategy)
	}
	return report, nil
}
