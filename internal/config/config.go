package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultEnvironment      = "local"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultTemplatesDir     = "templates"
	defaultPublicDir        = "public"
	defaultContentDir       = "content"
	defaultLocalesDir       = "locales"
	defaultFallbackLocale   = "en"
	defaultGeneratorTimeout = 30 * time.Second
	defaultDownloadDelay    = 2 * time.Second
	defaultViewTTL          = 30 * time.Minute
	defaultSweepInterval    = time.Minute
	defaultTheme            = "light"
	defaultHistoryLimit     = 12
	defaultCreatePerMinute  = 10
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	DevMode     bool
	Server      ServerConfig
	Paths       PathsConfig
	Session     SessionConfig
	Generator   GeneratorConfig
	UI          UIConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	PublicBaseURL   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address derived from the port.
func (s ServerConfig) Addr() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// PathsConfig lists on-disk locations for templates and static content.
type PathsConfig struct {
	Templates string
	Public    string
	Content   string
	Locales   string
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// GeneratorConfig points at the coloring page generation backend.
// An empty URL switches the client to its built-in placeholder renderer.
type GeneratorConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// UIConfig holds presentation tunables.
type UIConfig struct {
	DefaultTheme    string
	FallbackLocale  string
	DownloadDelay   time.Duration
	ViewTTL         time.Duration
	SweepInterval   time.Duration
	HistoryLimit    int
	CreatePerMinute int
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return c.Environment == "prod"
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Port resolution: prefer COLORCRAFT_WEB_PORT, then Cloud Run's PORT.
	port := stringWithDefault(lookup, "PORT", defaultPort)
	port = stringWithDefault(lookup, "COLORCRAFT_WEB_PORT", port)

	env := strings.ToLower(stringWithDefault(lookup, "COLORCRAFT_WEB_ENV", defaultEnvironment))

	cfg := Config{
		Environment: env,
		DevMode:     boolWithDefault(lookup, "COLORCRAFT_WEB_DEV", false),
		Server: ServerConfig{
			Port:            port,
			PublicBaseURL:   strings.TrimRight(stringWithDefault(lookup, "COLORCRAFT_WEB_PUBLIC_BASE_URL", ""), "/"),
			ReadTimeout:     durationWithDefault(lookup, "COLORCRAFT_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "COLORCRAFT_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "COLORCRAFT_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "COLORCRAFT_WEB_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Paths: PathsConfig{
			Templates: stringWithDefault(lookup, "COLORCRAFT_WEB_TEMPLATES_DIR", defaultTemplatesDir),
			Public:    stringWithDefault(lookup, "COLORCRAFT_WEB_PUBLIC_DIR", defaultPublicDir),
			Content:   stringWithDefault(lookup, "COLORCRAFT_WEB_CONTENT_DIR", defaultContentDir),
			Locales:   stringWithDefault(lookup, "COLORCRAFT_WEB_LOCALES_DIR", defaultLocalesDir),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "COLORCRAFT_WEB_SESSION_SIGNING_KEY", ""),
			Secure:     boolWithDefault(lookup, "COLORCRAFT_WEB_SESSION_SECURE", env == "prod"),
		},
		Generator: GeneratorConfig{
			URL:     strings.TrimRight(stringWithDefault(lookup, "COLORCRAFT_WEB_GENERATOR_URL", ""), "/"),
			Token:   stringWithDefault(lookup, "COLORCRAFT_WEB_GENERATOR_TOKEN", ""),
			Timeout: durationWithDefault(lookup, "COLORCRAFT_WEB_GENERATOR_TIMEOUT", defaultGeneratorTimeout),
		},
		UI: UIConfig{
			DefaultTheme:    strings.ToLower(stringWithDefault(lookup, "COLORCRAFT_WEB_THEME_DEFAULT", defaultTheme)),
			FallbackLocale:  strings.ToLower(stringWithDefault(lookup, "COLORCRAFT_WEB_FALLBACK_LOCALE", defaultFallbackLocale)),
			DownloadDelay:   durationWithDefault(lookup, "COLORCRAFT_WEB_DOWNLOAD_DELAY", defaultDownloadDelay),
			ViewTTL:         durationWithDefault(lookup, "COLORCRAFT_WEB_VIEW_TTL", defaultViewTTL),
			SweepInterval:   durationWithDefault(lookup, "COLORCRAFT_WEB_SWEEP_INTERVAL", defaultSweepInterval),
			HistoryLimit:    intWithDefault(lookup, "COLORCRAFT_WEB_HISTORY_LIMIT", defaultHistoryLimit),
			CreatePerMinute: intWithDefault(lookup, "COLORCRAFT_WEB_CREATE_PER_MIN", defaultCreatePerMinute),
		},
	}

	// Dev mode may also be toggled with the shorter DEV variable.
	if !cfg.DevMode {
		cfg.DevMode = boolWithDefault(lookup, "DEV", false)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		invalid = append(invalid, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		invalid = append(invalid, "Server.WriteTimeout")
	}
	if cfg.IsProduction() && strings.TrimSpace(cfg.Session.SigningKey) == "" {
		invalid = append(invalid, "Session.SigningKey")
	}
	if cfg.Generator.Timeout <= 0 {
		invalid = append(invalid, "Generator.Timeout")
	}
	switch cfg.UI.DefaultTheme {
	case "light", "dark":
	default:
		invalid = append(invalid, "UI.DefaultTheme")
	}
	if cfg.UI.DownloadDelay <= 0 {
		invalid = append(invalid, "UI.DownloadDelay")
	}
	if cfg.UI.ViewTTL <= 0 {
		invalid = append(invalid, "UI.ViewTTL")
	}
	if cfg.UI.SweepInterval <= 0 {
		invalid = append(invalid, "UI.SweepInterval")
	}
	if cfg.UI.HistoryLimit <= 0 {
		invalid = append(invalid, "UI.HistoryLimit")
	}
	if cfg.UI.CreatePerMinute < 0 {
		invalid = append(invalid, "UI.CreatePerMinute")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
