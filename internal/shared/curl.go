// Utilities for importing browser cookies from a copied cURL command.
package shared

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"|--cookie\s+'([^']+)'|--cookie\s+"([^"]+)"`)
	urlRegex    = regexp.MustCompile(`curl\s+'([^']+)'|curl\s+"([^"]+)"|curl\s+(https?://\S+)`)
)

// Cookie is a browser cookie injected into a session before navigation.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"http_only"`
}

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command ("Copy as cURL" in devtools) and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// ParseCurlCommand parses a cURL command and extracts its URL, headers and cookie string.
//
// A -b/--cookie flag takes precedence over a Cookie header.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookie, headerCookie string

	for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		headers[key] = value
	}

	if m := cookieRegex.FindStringSubmatch(curlCmd); m != nil {
		cookie = firstGroup(m)
	}
	if cookie == "" {
		cookie = headerCookie
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidArgument)
	}

	var rawURL string
	if m := urlRegex.FindStringSubmatch(curlCmd); m != nil {
		rawURL = firstGroup(m)
	}

	return &CurlHeaders{
		URL:     rawURL,
		Headers: headers,
		Cookie:  cookie,
	}, nil
}

// Cookies splits the cookie string into [Cookie] values scoped to domain.
//
// When domain is empty it is derived from the command URL as a parent-domain cookie.
func (c *CurlHeaders) Cookies(domain string) ([]Cookie, error) {
	if c.Cookie == "" {
		return nil, ErrNoCookiesInCommand
	}

	if domain == "" {
		u, err := url.Parse(c.URL)
		if err != nil || u.Hostname() == "" {
			return nil, fmt.Errorf("%w: cookie domain unknown", ErrMissingArgument)
		}
		domain = parentDomain(u.Hostname())
	}

	var cookies []Cookie
	for _, part := range strings.Split(c.Cookie, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, Cookie{
			Name:   name,
			Value:  value,
			Domain: domain,
			Path:   "/",
			Secure: true,
		})
	}

	if len(cookies) == 0 {
		return nil, ErrNoCookiesInCommand
	}
	return cookies, nil
}

// parentDomain turns music.youtube.com into .youtube.com so cookies reach sibling hosts.
func parentDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return "." + host
	}
	return "." + strings.Join(parts[len(parts)-2:], ".")
}

// SaveCookies writes cookies as JSON to path.
func SaveCookies(path string, cookies []Cookie) error {
	data, err := MarshalJSON(cookies, true)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}
	return nil
}

// LoadCookies reads a cookie file written by [SaveCookies]. An empty path yields no cookies.
func LoadCookies(path string) ([]Cookie, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("%w: cookies file %s: %v", ErrInvalidArgument, path, err)
	}
	return cookies, nil
}
