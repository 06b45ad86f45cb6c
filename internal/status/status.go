// Package status decides whether a page reports the watched subject as
// inactive or absent.
package status

import (
	"strings"
	"time"
)

// Result is the outcome of one status check
type Result struct {
	URL       string
	Subject   string
	Marker    string
	Found     bool
	CheckedAt time.Time
	// Err is set when the page could not be fetched. Found is meaningless then.
	Err error
}

// OK reports whether the check completed without finding the marker
func (r Result) OK() bool {
	return r.Err == nil && !r.Found
}

// MarkerPresent reports whether marker occurs in text
func MarkerPresent(text, marker string) bool {
	return strings.Contains(text, marker)
}
