package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Browser drivers understood by the browser package
const (
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
)

// Config holds all corp-monitor configuration
type Config struct {
	LogLevel string       `json:"log_level"`
	Status   StatusConfig `json:"status"`
	Roster   RosterConfig `json:"roster"`
}

// HTTPConfig controls the plain HTTP fetcher
type HTTPConfig struct {
	UserAgent string        `json:"user_agent"`
	Timeout   time.Duration `json:"timeout"`
}

// StatusConfig configures the page status check
type StatusConfig struct {
	URL     string     `json:"url"`
	Marker  string     `json:"marker"`
	Subject string     `json:"subject"`
	HTTP    HTTPConfig `json:"http"`
}

// BrowserConfig configures the browser automation driver
type BrowserConfig struct {
	Driver    string        `json:"driver"`
	Headless  bool          `json:"headless"`
	Timeout   time.Duration `json:"timeout"`
	Stealth   bool          `json:"stealth"`
	UserAgent string        `json:"user_agent"`
}

// LoginConfig describes a form login
type LoginConfig struct {
	LoginURL         string `json:"login_url"`
	LoggedInURL      string `json:"logged_in_url"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	UsernameSelector string `json:"username_selector"`
	PasswordSelector string `json:"password_selector"`
	SubmitSelector   string `json:"submit_selector"`
}

// ShiftsSource is the roster that maps names to shifts
type ShiftsSource struct {
	Login             LoginConfig `json:"login"`
	URL               string      `json:"url"`
	RowSelector       string      `json:"row_selector"`
	NameSelector      string      `json:"name_selector"`
	AttributeSelector string      `json:"attribute_selector"`
}

// MembersSource is the roster that lists member names
type MembersSource struct {
	Login        LoginConfig `json:"login"`
	URL          string      `json:"url"`
	ItemSelector string      `json:"item_selector"`
	NameSelector string      `json:"name_selector"`
}

// RosterConfig configures the roster reconciliation
type RosterConfig struct {
	Browser BrowserConfig `json:"browser"`
	Shifts  ShiftsSource  `json:"shifts"`
	Members MembersSource `json:"members"`
}

// MissingFieldsError lists every required setting that was not provided.
// Fields holds environment variable names.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required configuration: " + strings.Join(e.Fields, ", ")
}

// Validate checks the settings shared by every command
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// SlogLevel converts LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the status check configuration
func (s *StatusConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(s.URL) == "" {
		missing = append(missing, "STATUS_URL")
	}
	if s.Marker == "" {
		missing = append(missing, "STATUS_MARKER")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	if s.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	return nil
}

// Validate checks the roster configuration. All missing credentials and URLs
// are reported together.
func (r *RosterConfig) Validate() error {
	var missing []string
	check := func(value, env string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, env)
		}
	}

	check(r.Shifts.Login.LoginURL, "SHIFTS_LOGIN_URL")
	check(r.Shifts.URL, "SHIFTS_URL")
	check(r.Shifts.Login.Username, "SHIFTS_USERNAME")
	check(r.Shifts.Login.Password, "SHIFTS_PASSWORD")
	check(r.Members.Login.LoginURL, "MEMBERS_LOGIN_URL")
	check(r.Members.URL, "MEMBERS_URL")
	check(r.Members.Login.Username, "MEMBERS_USERNAME")
	check(r.Members.Login.Password, "MEMBERS_PASSWORD")

	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	switch r.Browser.Driver {
	case DriverChromedp, DriverRod:
	default:
		return fmt.Errorf("invalid browser driver: %s (must be one of: %s, %s)", r.Browser.Driver, DriverChromedp, DriverRod)
	}
	if r.Browser.Timeout <= 0 {
		return fmt.Errorf("browser timeout must be positive")
	}
	if r.Shifts.RowSelector == "" || r.Shifts.NameSelector == "" {
		return fmt.Errorf("shifts row and name selectors cannot be empty")
	}
	if r.Members.ItemSelector == "" {
		return fmt.Errorf("members item selector cannot be empty")
	}
	return nil
}

// ToJSON returns the configuration with credentials redacted
func (c *Config) ToJSON() (string, error) {
	safe := *c
	safe.Roster.Shifts.Login.Password = redact(safe.Roster.Shifts.Login.Password)
	safe.Roster.Members.Login.Password = redact(safe.Roster.Members.Login.Password)

	data, err := json.MarshalIndent(safe, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	return "***"
}
