package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// envBinding maps a viper key to its environment variable
type envBinding struct {
	key string
	env string
}

var envBindings = []envBinding{
	{"log_level", "LOG_LEVEL"},

	{"status.url", "STATUS_URL"},
	{"status.marker", "STATUS_MARKER"},
	{"status.subject", "STATUS_SUBJECT"},
	{"status.http.user_agent", "HTTP_USER_AGENT"},
	{"status.http.timeout", "HTTP_TIMEOUT"},

	{"roster.browser.driver", "BROWSER_DRIVER"},
	{"roster.browser.headless", "BROWSER_HEADLESS"},
	{"roster.browser.timeout", "BROWSER_TIMEOUT"},
	{"roster.browser.stealth", "BROWSER_STEALTH"},
	{"roster.browser.user_agent", "BROWSER_USER_AGENT"},

	{"roster.shifts.login.login_url", "SHIFTS_LOGIN_URL"},
	{"roster.shifts.login.logged_in_url", "SHIFTS_LOGGED_IN_URL"},
	{"roster.shifts.login.username", "SHIFTS_USERNAME"},
	{"roster.shifts.login.password", "SHIFTS_PASSWORD"},
	{"roster.shifts.login.username_selector", "SHIFTS_USERNAME_SELECTOR"},
	{"roster.shifts.login.password_selector", "SHIFTS_PASSWORD_SELECTOR"},
	{"roster.shifts.login.submit_selector", "SHIFTS_SUBMIT_SELECTOR"},
	{"roster.shifts.url", "SHIFTS_URL"},
	{"roster.shifts.row_selector", "SHIFTS_ROW_SELECTOR"},
	{"roster.shifts.name_selector", "SHIFTS_NAME_SELECTOR"},
	{"roster.shifts.attribute_selector", "SHIFTS_ATTRIBUTE_SELECTOR"},

	{"roster.members.login.login_url", "MEMBERS_LOGIN_URL"},
	{"roster.members.login.logged_in_url", "MEMBERS_LOGGED_IN_URL"},
	{"roster.members.login.username", "MEMBERS_USERNAME"},
	{"roster.members.login.password", "MEMBERS_PASSWORD"},
	{"roster.members.login.username_selector", "MEMBERS_USERNAME_SELECTOR"},
	{"roster.members.login.password_selector", "MEMBERS_PASSWORD_SELECTOR"},
	{"roster.members.login.submit_selector", "MEMBERS_SUBMIT_SELECTOR"},
	{"roster.members.url", "MEMBERS_URL"},
	{"roster.members.item_selector", "MEMBERS_ITEM_SELECTOR"},
	{"roster.members.name_selector", "MEMBERS_NAME_SELECTOR"},
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. Command specific required
// fields are checked by StatusConfig.Validate and RosterConfig.Validate.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if err := readConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg := unmarshal(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Variables that are already set are not overridden and missing files are
// skipped. It returns the files that were loaded.
func LoadDotEnv(files ...string) ([]string, error) {
	var loaded []string
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", file, err)
		}
		loaded = append(loaded, file)
	}
	return loaded, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("status.url", "https://habborp.city/corporacao/5")
	v.SetDefault("status.marker", "Usuário não cadastrado")
	v.SetDefault("status.subject", "hrprestau")
	v.SetDefault("status.http.user_agent", defaultUserAgent)
	v.SetDefault("status.http.timeout", "30s")

	v.SetDefault("roster.browser.driver", DriverChromedp)
	v.SetDefault("roster.browser.headless", true)
	v.SetDefault("roster.browser.timeout", "15s")
	v.SetDefault("roster.browser.stealth", false)
	v.SetDefault("roster.browser.user_agent", defaultUserAgent)

	for _, source := range []string{"shifts", "members"} {
		prefix := "roster." + source + ".login."
		v.SetDefault(prefix+"username_selector", "input[name=username]")
		v.SetDefault(prefix+"password_selector", "input[name=password]")
		v.SetDefault(prefix+"submit_selector", "button[type=submit]")
	}

	v.SetDefault("roster.shifts.row_selector", "table tbody tr")
	v.SetDefault("roster.shifts.name_selector", "td:nth-child(1)")
	v.SetDefault("roster.shifts.attribute_selector", "td:nth-child(2)")
	v.SetDefault("roster.members.item_selector", ".member")
	v.SetDefault("roster.members.name_selector", "")
}

func bindEnv(v *viper.Viper) error {
	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return err
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigName("corp-monitor")
	}

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional when it was not named explicitly
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func unmarshal(v *viper.Viper) *Config {
	login := func(prefix string) LoginConfig {
		return LoginConfig{
			LoginURL:         v.GetString(prefix + "login_url"),
			LoggedInURL:      v.GetString(prefix + "logged_in_url"),
			Username:         v.GetString(prefix + "username"),
			Password:         v.GetString(prefix + "password"),
			UsernameSelector: v.GetString(prefix + "username_selector"),
			PasswordSelector: v.GetString(prefix + "password_selector"),
			SubmitSelector:   v.GetString(prefix + "submit_selector"),
		}
	}

	return &Config{
		LogLevel: v.GetString("log_level"),
		Status: StatusConfig{
			URL:     v.GetString("status.url"),
			Marker:  v.GetString("status.marker"),
			Subject: v.GetString("status.subject"),
			HTTP: HTTPConfig{
				UserAgent: v.GetString("status.http.user_agent"),
				Timeout:   v.GetDuration("status.http.timeout"),
			},
		},
		Roster: RosterConfig{
			Browser: BrowserConfig{
				Driver:    v.GetString("roster.browser.driver"),
				Headless:  v.GetBool("roster.browser.headless"),
				Timeout:   v.GetDuration("roster.browser.timeout"),
				Stealth:   v.GetBool("roster.browser.stealth"),
				UserAgent: v.GetString("roster.browser.user_agent"),
			},
			Shifts: ShiftsSource{
				Login:             login("roster.shifts.login."),
				URL:               v.GetString("roster.shifts.url"),
				RowSelector:       v.GetString("roster.shifts.row_selector"),
				NameSelector:      v.GetString("roster.shifts.name_selector"),
				AttributeSelector: v.GetString("roster.shifts.attribute_selector"),
			},
			Members: MembersSource{
				Login:        login("roster.members.login."),
				URL:          v.GetString("roster.members.url"),
				ItemSelector: v.GetString("roster.members.item_selector"),
				NameSelector: v.GetString("roster.members.name_selector"),
			},
		},
	}
}
