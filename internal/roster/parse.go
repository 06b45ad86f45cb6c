package roster

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RosterSelectors locate name/attribute pairs in a page
type RosterSelectors struct {
	// Row matches one element per roster entry
	Row string
	// Name and Attribute are evaluated inside each row
	Name      string
	Attribute string
}

// SetSelectors locate names in a page
type SetSelectors struct {
	// Item matches one element per name
	Item string
	// Name is evaluated inside each item; empty uses the item's own text
	Name string
}

// ParseRoster reads a name -> attribute roster from an HTML document.
// Rows without a name are skipped and a repeated name keeps its last attribute.
func ParseRoster(r io.Reader, sel RosterSelectors) (Roster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster page: %w", err)
	}

	out := make(Roster)
	doc.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		name := cleanText(row.Find(sel.Name).First().Text())
		if name == "" {
			return
		}
		var attr string
		if sel.Attribute != "" {
			attr = cleanText(row.Find(sel.Attribute).First().Text())
		}
		out[name] = attr
	})
	return out, nil
}

// ParseSet reads a set of names from an HTML document
func ParseSet(r io.Reader, sel SetSelectors) (Set, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse member page: %w", err)
	}

	out := make(Set)
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		node := item
		if sel.Name != "" {
			node = item.Find(sel.Name).First()
		}
		if name := cleanText(node.Text()); name != "" {
			out[name] = struct{}{}
		}
	})
	return out, nil
}

// cleanText trims and collapses internal whitespace
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
