package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"corp-monitor/internal/browser"
	"corp-monitor/internal/config"
	"corp-monitor/internal/roster"
)

// Roster source names
const (
	SourceShifts  = "shifts"
	SourceMembers = "members"
)

// AcquisitionError means a roster could not be loaded at all
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire %s roster: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// RosterResult is the outcome of one reconciliation
type RosterResult struct {
	ShiftsURL   string
	MembersURL  string
	ShiftCount  int
	MemberCount int
	// Discrepancies is nil when Err is set
	Discrepancies roster.Discrepancy
	// Degraded lists sources whose roster never appeared and were read as empty
	Degraded  []string
	CheckedAt time.Time
	Err       error
}

// OK reports whether the reconciliation ran and found nothing
func (r RosterResult) OK() bool {
	return r.Err == nil && len(r.Discrepancies) == 0
}

// RosterPipeline logs in to both sources and reconciles their rosters
type RosterPipeline struct {
	Open browser.Opener
	// Now defaults to time.Now
	Now    func() time.Time
	Logger *slog.Logger
}

// Run scrapes the shifts roster, then the members roster, each in its own
// browser session, and returns the shifts entries missing from members.
func (p *RosterPipeline) Run(ctx context.Context, cfg config.RosterConfig) RosterResult {
	logger := loggerOrDiscard(p.Logger)
	now := nowFunc(p.Now)
	res := RosterResult{
		ShiftsURL:  cfg.Shifts.URL,
		MembersURL: cfg.Members.URL,
	}

	shifts, err := p.shifts(ctx, cfg, &res)
	if err != nil {
		res.CheckedAt = now()
		res.Err = &AcquisitionError{Source: SourceShifts, Err: err}
		return res
	}

	members, err := p.members(ctx, cfg, &res)
	if err != nil {
		res.CheckedAt = now()
		res.Err = &AcquisitionError{Source: SourceMembers, Err: err}
		return res
	}

	res.ShiftCount = len(shifts)
	res.MemberCount = len(members)
	res.Discrepancies = roster.Reconcile(shifts, members)
	res.CheckedAt = now()

	logger.Info("Roster reconciliation complete",
		"shifts", res.ShiftCount,
		"members", res.MemberCount,
		"discrepancies", len(res.Discrepancies),
		"degraded", strings.Join(res.Degraded, ","))
	return res
}

func (p *RosterPipeline) shifts(ctx context.Context, cfg config.RosterConfig, res *RosterResult) (roster.Roster, error) {
	src := cfg.Shifts
	html, err := p.acquire(ctx, SourceShifts, src.Login, src.URL, src.RowSelector, cfg.Browser.Timeout, res)
	if err != nil {
		return nil, err
	}
	if html == "" {
		return roster.Roster{}, nil
	}
	return roster.ParseRoster(strings.NewReader(html), roster.RosterSelectors{
		Row:       src.RowSelector,
		Name:      src.NameSelector,
		Attribute: src.AttributeSelector,
	})
}

func (p *RosterPipeline) members(ctx context.Context, cfg config.RosterConfig, res *RosterResult) (roster.Set, error) {
	src := cfg.Members
	html, err := p.acquire(ctx, SourceMembers, src.Login, src.URL, src.ItemSelector, cfg.Browser.Timeout, res)
	if err != nil {
		return nil, err
	}
	if html == "" {
		return roster.Set{}, nil
	}
	return roster.ParseSet(strings.NewReader(html), roster.SetSelectors{
		Item: src.ItemSelector,
		Name: src.NameSelector,
	})
}

// acquire logs in and returns the roster page source. An empty page source
// with a nil error means the roster never appeared and the source is degraded.
func (p *RosterPipeline) acquire(ctx context.Context, source string, login config.LoginConfig, url, waitSelector string, timeout time.Duration, res *RosterResult) (string, error) {
	logger := loggerOrDiscard(p.Logger).With("source", source)

	var html string
	err := browser.WithSession(ctx, p.Open, func(s browser.Session) error {
		logger.Debug("Logging in", "url", login.LoginURL)
		if err := browser.Login(ctx, s, browser.LoginFormFromConfig(login, timeout)); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		logger.Debug("Loading roster", "url", url)
		if err := s.Navigate(ctx, url); err != nil {
			return err
		}

		if err := s.WaitVisible(ctx, waitSelector, timeout); err != nil {
			var browserErr *browser.Error
			if errors.As(err, &browserErr) && browserErr.Timeout() && ctx.Err() == nil {
				logger.Warn("Roster did not appear, treating it as empty",
					"selector", waitSelector,
					"error", err)
				res.Degraded = append(res.Degraded, source)
				return nil
			}
			return err
		}

		page, err := s.PageSource(ctx)
		if err != nil {
			return err
		}
		html = page
		return nil
	})
	if err != nil {
		logger.Error("Roster acquisition failed", "error", err)
		return "", err
	}
	return html, nil
}
