// Package profile resolves a CLI target into a username and profile URL.
package profile

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/use-agent/gamexport/models"
)

// DefaultSite is the profile host used for bare usernames.
const DefaultSite = "backloggd.com"

// Target is a resolved profile.
type Target struct {
	Username   string
	ProfileURL string
}

// URLFor returns the canonical games listing URL of username on site.
func URLFor(site, username string) string {
	if site == "" {
		site = DefaultSite
	}
	site = strings.TrimRight(site, "/")
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	return fmt.Sprintf("%s/u/%s/games/", site, url.PathEscape(username))
}

// Resolve interprets arg as either a full profile URL (an http:// or
// https:// address) or a bare username. A URL is used as given; its
// username is the path segment following "/u/".
func Resolve(arg, site string) (Target, error) {
	arg = strings.TrimSpace(arg)
	if !isURL(arg) {
		return ForUsername(arg, site)
	}

	u, err := url.Parse(arg)
	if err != nil || u.Host == "" {
		return Target{}, models.NewExportError(models.ErrCodeInvalidInput,
			fmt.Sprintf("invalid profile url %q", arg), err)
	}
	name := UsernameFromPath(u.Path)
	if name == "" {
		return Target{}, models.NewExportError(models.ErrCodeInvalidInput,
			fmt.Sprintf("no /u/<username>/ segment in %q", arg), nil)
	}
	return Target{Username: name, ProfileURL: arg}, nil
}

// ForUsername resolves a bare username on site. Names that merely start
// with "http" are usernames like any other.
func ForUsername(username, site string) (Target, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Target{}, models.NewExportError(models.ErrCodeInvalidInput, "empty profile", nil)
	}
	if strings.ContainsAny(username, "/?#") {
		return Target{}, models.NewExportError(models.ErrCodeInvalidInput,
			fmt.Sprintf("invalid username %q", username), nil)
	}
	return Target{Username: username, ProfileURL: URLFor(site, username)}, nil
}

func isURL(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// UsernameFromPath returns the segment after "/u/" in path, or "".
func UsernameFromPath(path string) string {
	_, rest, ok := strings.Cut(path, "/u/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return name
}
