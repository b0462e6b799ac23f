package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plbridge/internal/shared"
)

// cookieDomains maps a service name to the domain its cookies are scoped to.
var cookieDomains = map[string]string{
	"spotify": ".spotify.com",
	"ytmusic": ".youtube.com",
}

// SetupConfig writes the default configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if err := shared.CreateConfigFile(path, cmd.Bool("force")); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set browser.source.profile_dir and browser.destination.profile_dir to reuse logged-in profiles\n")
	r.writePlain("2. Or import cookies with 'plbridge setup cookies <curl-file> --service ytmusic'\n")
	return nil
}

// SetupCookies converts a cURL command (DevTools "Copy as cURL") into a cookie file that
// sessions import at launch.
func (r *Runner) SetupCookies(ctx context.Context, cmd *cli.Command) error {
	curlFile := cmd.StringArg("curl-file")
	if curlFile == "" {
		return fmt.Errorf("%w: cURL file", shared.ErrMissingArgument)
	}

	service := strings.ToLower(cmd.String("service"))
	domain, ok := cookieDomains[service]
	if !ok {
		return fmt.Errorf("%w: invalid service '%s' (must be 'spotify' or 'ytmusic')", shared.ErrInvalidArgument, service)
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = service + "_cookies.json"
	}

	headers, err := shared.ParseCurlFile(curlFile)
	if err != nil {
		return fmt.Errorf("failed to parse cURL file: %w", err)
	}
	r.logger.Info("parsed cURL from file", "file", curlFile)

	cookies, err := headers.Cookies(domain)
	if err != nil {
		return err
	}

	if err := shared.SaveCookies(outputPath, cookies); err != nil {
		return err
	}
	r.logger.Info("cookies saved", "path", outputPath, "count", len(cookies))

	key := "source"
	if service == "ytmusic" {
		key = "destination"
	}
	r.writePlain("✓ Saved %d cookies to %s\n", len(cookies), outputPath)
	r.writePlainln("Next steps:")
	r.writePlain("Update config.toml with: browser.%s.cookies_file = \"%s\"\n", key, outputPath)
	return nil
}
