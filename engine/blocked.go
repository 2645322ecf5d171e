package engine

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// challengeTitles are <title> texts of anti-bot interstitials.
var challengeTitles = []string{
	"just a moment...",
	"attention required!",
	"access denied",
	"please wait...",
}

// BlockedReason reports whether body is an anti-bot interstitial rather
// than real content. Only the page title is trusted: challenge scripts are
// also injected into ordinary pages served through the same proxy.
func BlockedReason(body []byte) (string, bool) {
	title := strings.ToLower(extractTitle(body))
	if title == "" {
		return "", false
	}
	for _, t := range challengeTitles {
		if title == t {
			return "challenge title " + `"` + t + `"`, true
		}
	}
	return "", false
}

// extractTitle extracts the <title> content from raw HTML bytes.
func extractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}
