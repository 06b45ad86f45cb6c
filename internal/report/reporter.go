// Package report renders check results as the plain text that the CI job
// turns into an issue. An OK result renders nothing at all.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"corp-monitor/internal/monitor"
	"corp-monitor/internal/status"
)

// TimeFormat is used for every report timestamp, always in UTC
const TimeFormat = "2006-01-02 15:04:05 UTC"

// Reporter writes reports to Out and acquisition errors to Err
type Reporter struct {
	out   io.Writer
	err   io.Writer
	color bool

	heading lipgloss.Style
	alert   lipgloss.Style
	muted   lipgloss.Style
}

// New creates a reporter. Colour is only used when out is a terminal,
// noColor is false and NO_COLOR is not set.
func New(out, errOut io.Writer, noColor bool) *Reporter {
	renderer := lipgloss.NewRenderer(out)
	return &Reporter{
		out:     out,
		err:     errOut,
		color:   !noColor && isTerminal(out) && !termenv.EnvNoColor(),
		heading: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		alert:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		muted:   renderer.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// Color reports whether output is styled
func (r *Reporter) Color() bool {
	return r.color
}

// Status prints the marker notification or the fetch error. A check that
// did not find the marker prints nothing.
func (r *Reporter) Status(res status.Result) error {
	if res.OK() {
		return nil
	}

	var b strings.Builder
	ts := timestamp(res.CheckedAt)

	if res.Err != nil {
		fmt.Fprintf(&b, "%s %s\n", ts, r.paint(r.alert, fmt.Sprintf("CONNECTION or HTTP ERROR while checking %s: %v", res.Subject, res.Err)))
		fmt.Fprintln(&b, r.paint(r.heading, "--- Details ---"))
		fmt.Fprintf(&b, "URL: %s\n", res.URL)
		return r.write(r.out, b.String())
	}

	fmt.Fprintf(&b, "%s Monitoring of '%s' found the marker string.\n", ts, res.Subject)
	fmt.Fprintln(&b, r.paint(r.heading, "--- Notification Details ---"))
	fmt.Fprintf(&b, "Current Status: %s\n", r.paint(r.alert, "INACTIVE/ABSENT"))
	fmt.Fprintf(&b, "Marker Found: '%s'\n", res.Marker)
	fmt.Fprintf(&b, "URL: %s\n", res.URL)
	fmt.Fprintf(&b, "\n**Action Required:** Check the page and the state of '%s'.\n", res.Subject)
	return r.write(r.out, b.String())
}

// Roster prints the discrepancy report, or the acquisition error to the
// error stream. A reconciliation without discrepancies prints nothing.
func (r *Reporter) Roster(res monitor.RosterResult) error {
	ts := timestamp(res.CheckedAt)

	if res.Err != nil {
		line := fmt.Sprintf("%s %s\n", ts, r.paint(r.alert, "ROSTER ACQUISITION ERROR: "+res.Err.Error()))
		return r.write(r.err, line)
	}
	if res.OK() {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Roster reconciliation found %d name(s) on the shifts roster missing from the members roster.\n",
		ts, len(res.Discrepancies))

	fmt.Fprintln(&b, r.paint(r.heading, "--- Discrepancies ---"))
	for _, name := range res.Discrepancies.Names() {
		fmt.Fprintf(&b, "- %s (%s)\n", name, res.Discrepancies[name])
	}

	fmt.Fprintln(&b, r.paint(r.heading, "--- Sources ---"))
	fmt.Fprintf(&b, "Shifts: %s (%d names)\n", res.ShiftsURL, res.ShiftCount)
	fmt.Fprintf(&b, "Members: %s (%d names)\n", res.MembersURL, res.MemberCount)
	for _, source := range res.Degraded {
		fmt.Fprintln(&b, r.paint(r.muted, fmt.Sprintf("Note: the %s roster never appeared and was treated as empty.", source)))
	}

	fmt.Fprintln(&b, "\n**Action Required:** Review the names above.")
	return r.write(r.out, b.String())
}

func (r *Reporter) paint(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

func (r *Reporter) write(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func timestamp(t time.Time) string {
	return "[" + t.UTC().Format(TimeFormat) + "]"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
