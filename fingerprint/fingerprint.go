// Package fingerprint derives equality fingerprints for fetched pages.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/net/html"
)

// recordSep separates fragments in the hashed stream.
const recordSep = 0x1e

// Nodes returns a hex SHA-256 over the rendered HTML of nodes, in order.
// Runs of whitespace are collapsed before hashing so that re-indented
// markup of the same content yields the same fingerprint.
func Nodes(nodes []*html.Node) string {
	h := sha256.New()
	var buf bytes.Buffer
	for i, n := range nodes {
		buf.Reset()
		if err := html.Render(&buf, n); err != nil {
			buf.Reset()
			buf.WriteString(text(n))
		}
		if i > 0 {
			h.Write([]byte{recordSep})
		}
		h.Write([]byte(Normalize(buf.String())))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize collapses every whitespace run to a single space and trims
// the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// text concatenates the text nodes under n.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
