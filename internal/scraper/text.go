package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText returns the visible text of an HTML document, trimmed.
// Script, style and noscript contents are dropped.
func ExtractText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Text()), nil
}
