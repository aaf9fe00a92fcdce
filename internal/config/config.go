// Package config provides configuration for the docsite binary.
// Loads from: CLI flags > env vars > .docsite/config.toml > built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Directory and file names under the content root.
const (
	ConfigDirName  = ".docsite"
	ConfigFileName = "config.toml"
	DBFileName     = "docsite.db"
)

// Built-in defaults.
const (
	DefaultIndexPattern        = `(?i)^\d+[_-]?(内容索引|content[-_ ]?index)\.md$`
	DefaultQuickStartMarker    = "快速开始"
	DefaultRecentUpdatesMarker = "最近更新"
	DefaultDebounceMS          = 200
	MinDebounceMS              = 150
	MaxDebounceMS              = 300
	DefaultRecencyKey          = "docsite.recent"
	DefaultPort                = 4078
)

// DefaultLatest is the built-in priority list for the search default view.
var DefaultLatest = []string{"button", "input", "select", "tabs", "modal", "table"}

// Config holds all docsite configuration, loaded from TOML + env + flags.
type Config struct {
	Content ContentConfig `toml:"content"`
	Search  SearchConfig  `toml:"search"`
	Recency RecencyConfig `toml:"recency"`
	Web     WebConfig     `toml:"web"`
}

// ContentConfig locates the docs and the landing-page index.
type ContentConfig struct {
	Root                string `toml:"root"`
	AltRoot             string `toml:"alt_root"`
	Aliases             string `toml:"aliases"`
	IndexPattern        string `toml:"index_pattern"`
	QuickStartMarker    string `toml:"quick_start_marker"`
	RecentUpdatesMarker string `toml:"recent_updates_marker"`
}

// SearchConfig tunes the command palette.
type SearchConfig struct {
	DebounceMS int      `toml:"debounce_ms"`
	Latest     []string `toml:"latest"`
	Catalog    string   `toml:"catalog"`
}

// RecencyConfig controls the recently visited list.
type RecencyConfig struct {
	DBPath string `toml:"db_path"`
	Key    string `toml:"key"`
}

// WebConfig controls the HTTP server.
type WebConfig struct {
	Port int `toml:"port"`
}

// DefaultConfig returns a Config with all built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			IndexPattern:        DefaultIndexPattern,
			QuickStartMarker:    DefaultQuickStartMarker,
			RecentUpdatesMarker: DefaultRecentUpdatesMarker,
		},
		Search: SearchConfig{
			DebounceMS: DefaultDebounceMS,
			Latest:     append([]string(nil), DefaultLatest...),
		},
		Recency: RecencyConfig{
			Key: DefaultRecencyKey,
		},
		Web: WebConfig{
			Port: DefaultPort,
		},
	}
}

// LoadConfig merges all configuration sources: defaults < TOML file < env vars.
// The --root flag (RootOverride) is handled by ContentRoot.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(findConfigFile())
}

// LoadConfigFrom loads configuration from a specific file path, merging with
// defaults and env vars. A missing file is not an error.
func LoadConfigFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			meta, err := toml.DecodeFile(configPath, cfg)
			if err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
			warnUnknownKeys(meta, configPath)
		}
	}

	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

// applyEnv lets environment variables override TOML values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCSITE_ROOT"); v != "" {
		cfg.Content.Root = v
	}
	if v := os.Getenv("DOCSITE_ALT_ROOT"); v != "" {
		cfg.Content.AltRoot = v
	}
	if v := os.Getenv("DOCSITE_ALIASES"); v != "" {
		cfg.Content.Aliases = v
	}
	if v := os.Getenv("DOCSITE_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DebounceMS = n
		} else {
			fmt.Fprintf(os.Stderr, "docsite: WARNING: DOCSITE_DEBOUNCE_MS=%q is not a number, ignoring.\n", v)
		}
	}
	if v := os.Getenv("DOCSITE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Web.Port = n
		} else {
			fmt.Fprintf(os.Stderr, "docsite: WARNING: DOCSITE_PORT=%q is not a valid port, ignoring.\n", v)
		}
	}
}

// normalize clamps values to their supported ranges.
func normalize(cfg *Config) {
	d := DefaultConfig()
	switch {
	case cfg.Search.DebounceMS <= 0:
		cfg.Search.DebounceMS = DefaultDebounceMS
	case cfg.Search.DebounceMS < MinDebounceMS:
		cfg.Search.DebounceMS = MinDebounceMS
	case cfg.Search.DebounceMS > MaxDebounceMS:
		cfg.Search.DebounceMS = MaxDebounceMS
	}
	if cfg.Recency.Key == "" {
		cfg.Recency.Key = d.Recency.Key
	}
	if cfg.Content.IndexPattern == "" {
		cfg.Content.IndexPattern = d.Content.IndexPattern
	}
	if cfg.Content.QuickStartMarker == "" {
		cfg.Content.QuickStartMarker = d.Content.QuickStartMarker
	}
	if cfg.Content.RecentUpdatesMarker == "" {
		cfg.Content.RecentUpdatesMarker = d.Content.RecentUpdatesMarker
	}
	if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
		cfg.Web.Port = DefaultPort
	}
}

// DebounceWindow returns the palette debounce as a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

// IndexRegexp compiles the index document pattern, falling back to the
// default when the configured one is invalid.
func (c *Config) IndexRegexp() *regexp.Regexp {
	re, err := regexp.Compile(c.Content.IndexPattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docsite: WARNING: invalid index_pattern %q (%v), using default.\n", c.Content.IndexPattern, err)
		return regexp.MustCompile(DefaultIndexPattern)
	}
	return re
}

// findConfigFile looks for .docsite/config.toml in the content root, then CWD.
func findConfigFile() string {
	if root := resolveRootForConfig(); root != "" {
		p := ConfigFilePath(root)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		p := ConfigFilePath(cwd)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// resolveRootForConfig resolves the root for config loading without calling
// ContentRoot to avoid a loop with config loading.
func resolveRootForConfig() string {
	if RootOverride != "" {
		return RootOverride
	}
	return os.Getenv("DOCSITE_ROOT")
}

// FindConfigFile returns the path to the active config file, or empty string if none found.
func FindConfigFile() string {
	return findConfigFile()
}

// ConfigFilePath returns the path where the config file should be written
// for the given content root.
func ConfigFilePath(root string) string {
	return filepath.Join(root, ConfigDirName, ConfigFileName)
}

// GenerateConfig writes a default .docsite/config.toml with comments.
func GenerateConfig(root string) error {
	configPath := ConfigFilePath(root)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(configPath, []byte(generateTOMLContent(root)), 0o600)
}

func generateTOMLContent(root string) string {
	var b strings.Builder
	b.WriteString("# docsite configuration\n")
	b.WriteString("#\n")
	b.WriteString("# Priority: CLI flags > environment variables > this file > built-in defaults\n")
	b.WriteString("# Environment variables: DOCSITE_ROOT, DOCSITE_ALT_ROOT, DOCSITE_ALIASES,\n")
	b.WriteString("#   DOCSITE_DATA_DIR, DOCSITE_DEBOUNCE_MS, DOCSITE_PORT\n\n")

	b.WriteString("[content]\n")
	if root != "" {
		fmt.Fprintf(&b, "root = %q\n", root)
	} else {
		b.WriteString("# root = \"/path/to/site\"  # must contain docs/\n")
	}
	b.WriteString("# alt_root = \"/path/to/local/drafts\"  # consulted when root lacks a file\n")
	b.WriteString("# aliases = \"aliases.json\"  # alt-root path -> canonical path\n")
	fmt.Fprintf(&b, "index_pattern = %q\n", DefaultIndexPattern)
	fmt.Fprintf(&b, "quick_start_marker = %q\n", DefaultQuickStartMarker)
	fmt.Fprintf(&b, "recent_updates_marker = %q\n\n", DefaultRecentUpdatesMarker)

	b.WriteString("[search]\n")
	fmt.Fprintf(&b, "debounce_ms = %d  # %d..%d\n", DefaultDebounceMS, MinDebounceMS, MaxDebounceMS)
	b.WriteString("latest = [")
	for i, id := range DefaultLatest {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", id)
	}
	b.WriteString("]\n")
	b.WriteString("# catalog = \"catalog.yaml\"  # static search entries\n\n")

	b.WriteString("[recency]\n")
	b.WriteString("# db_path = \"\"  # defaults to <data dir>/docsite.db\n")
	fmt.Fprintf(&b, "key = %q\n\n", DefaultRecencyKey)

	b.WriteString("[web]\n")
	fmt.Fprintf(&b, "port = %d\n", DefaultPort)

	return b.String()
}

// ShowConfig returns the current effective configuration as TOML.
func ShowConfig() string {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Sprintf("# Error loading config: %v\n", err)
	}

	if cfg.Content.Root == "" {
		cfg.Content.Root = ContentRoot()
	}
	if cfg.Recency.DBPath == "" {
		cfg.Recency.DBPath = DBPath()
	}

	var b strings.Builder
	b.WriteString("# Effective docsite configuration (merged from all sources)\n\n")
	enc := toml.NewEncoder(&b)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Sprintf("# Error encoding config: %v\n", err)
	}
	return b.String()
}

// loadConfigSafe loads config without failing. Returns nil on error.
func loadConfigSafe() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		return nil
	}
	return cfg
}

// ConfigWarning returns any config file parse error, or empty string if OK.
func ConfigWarning() string {
	_, err := LoadConfig()
	if err != nil {
		return err.Error()
	}
	return ""
}

// configSuggestions maps common wrong keys to the correct TOML key name.
var configSuggestions = map[string]string{
	"docs":          "root",
	"docs_dir":      "root",
	"content_root":  "root",
	"alias":         "aliases",
	"alias_file":    "aliases",
	"debounce":      "debounce_ms",
	"delay_ms":      "debounce_ms",
	"priority":      "latest",
	"latest_ids":    "latest",
	"db":            "db_path",
	"database":      "db_path",
	"storage_key":   "key",
	"addr":          "port",
	"listen":        "port",
	"index":         "index_pattern",
	"index_file":    "index_pattern",
	"quick_start":   "quick_start_marker",
	"recent_marker": "recent_updates_marker",
}

// warnUnknownKeys prints warnings for unrecognized config keys.
func warnUnknownKeys(meta toml.MetaData, configPath string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}

	fname := filepath.Base(configPath)
	for _, key := range undecoded {
		keyStr := key.String()
		lastPart := key[len(key)-1]

		if suggestion, ok := configSuggestions[lastPart]; ok {
			fmt.Fprintf(os.Stderr, "docsite: WARNING: unknown key %q in %s, did you mean %q?\n",
				keyStr, fname, suggestion)
		} else {
			fmt.Fprintf(os.Stderr, "docsite: WARNING: unknown key %q in %s (will be ignored)\n",
				keyStr, fname)
		}
	}
}

// RootOverride is set by the --root global flag.
var RootOverride string

// Sentinel errors for consistent messaging across commands.
var (
	// ErrNoRoot is returned when no usable content root can be resolved.
	ErrNoRoot = errors.New("no content root found: pass --root or set DOCSITE_ROOT")
	// ErrNoDatabase is returned when the state database cannot be opened.
	ErrNoDatabase = errors.New("cannot open docsite state database")
)

// ContentRoot returns the content root directory: the --root flag, then
// DOCSITE_ROOT, then the config file, then the working directory when it
// holds a docs/ folder. Empty means none was found.
func ContentRoot() string {
	var path string
	if RootOverride != "" {
		path = RootOverride
	} else if v := os.Getenv("DOCSITE_ROOT"); v != "" {
		path = v
	} else if cfg := loadConfigSafe(); cfg != nil && cfg.Content.Root != "" {
		path = cfg.Content.Root
	} else {
		path = defaultRoot()
	}
	if path != "" {
		path = validateRoot(path)
	}
	return path
}

// RequireContentRoot is ContentRoot returning ErrNoRoot when unresolved.
func RequireContentRoot() (string, error) {
	root := ContentRoot()
	if root == "" {
		return "", ErrNoRoot
	}
	return root, nil
}

func defaultRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, marker := range []string{"docs", ConfigDirName} {
		if info, err := os.Stat(filepath.Join(cwd, marker)); err == nil && info.IsDir() {
			return cwd
		}
	}
	return ""
}

// validateRoot rejects roots that are too broad (e.g., /, /home, /Users)
// and resolves symlinks to prevent symlink-based escapes.
func validateRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	dangerous := []string{"/", "/home", "/Users", "/tmp", "/var", "/etc", "/opt"}
	if runtime.GOOS == "windows" && len(abs) >= 3 {
		for _, letter := range "ABCDEFGHIJKLMNOPQRSTUVWXYZ" {
			dangerous = append(dangerous, string(letter)+":\\")
		}
		driveRoot := abs[:3]
		dangerous = append(dangerous, filepath.Join(driveRoot, "Users"), filepath.Join(driveRoot, "Windows"))
	}
	for _, d := range dangerous {
		if abs == d {
			fmt.Fprintf(os.Stderr, "WARNING: content root %q is too broad, ignoring.\n", abs)
			return ""
		}
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// May not exist yet; the tree builder reports that.
		return abs
	}
	for _, d := range dangerous {
		if resolved == d {
			fmt.Fprintf(os.Stderr, "WARNING: content root %q resolves to %q which is too broad, ignoring.\n", abs, resolved)
			return ""
		}
		if resolvedDangerous, err := filepath.EvalSymlinks(d); err == nil && resolved == resolvedDangerous {
			fmt.Fprintf(os.Stderr, "WARNING: content root %q resolves to %q which is too broad, ignoring.\n", abs, resolved)
			return ""
		}
	}
	return abs
}

// AltRoot returns the optional alternate content root.
func AltRoot() string {
	if cfg := loadConfigSafe(); cfg != nil && cfg.Content.AltRoot != "" {
		return resolveAgainstRoot(cfg.Content.AltRoot)
	}
	return ""
}

// AliasesPath returns the optional alias table path.
func AliasesPath() string {
	if cfg := loadConfigSafe(); cfg != nil && cfg.Content.Aliases != "" {
		return resolveAgainstRoot(cfg.Content.Aliases)
	}
	return ""
}

// CatalogPath returns the optional static search catalog path.
func CatalogPath() string {
	if cfg := loadConfigSafe(); cfg != nil && cfg.Search.Catalog != "" {
		return resolveAgainstRoot(cfg.Search.Catalog)
	}
	return ""
}

// resolveAgainstRoot makes a relative path relative to the content root.
func resolveAgainstRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if root := ContentRoot(); root != "" {
		return filepath.Join(root, p)
	}
	return p
}

// DBPath returns the path to the SQLite state database.
func DBPath() string {
	if cfg := loadConfigSafe(); cfg != nil && cfg.Recency.DBPath != "" {
		return resolveAgainstRoot(cfg.Recency.DBPath)
	}
	return filepath.Join(DataDir(), DBFileName)
}

// DataDir returns the data directory.
func DataDir() string {
	if v := os.Getenv("DOCSITE_DATA_DIR"); v != "" {
		return validateDataDir(v)
	}
	return defaultDataDir()
}

func defaultDataDir() string {
	return filepath.Join(ContentRoot(), ConfigDirName, "data")
}

// validateDataDir checks that the given path is a writable directory (or can
// be created). Falls back to the default data dir if the path is invalid.
func validateDataDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: DOCSITE_DATA_DIR=%q is not a valid path, using default.\n", dir)
		return defaultDataDir()
	}

	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() {
			fmt.Fprintf(os.Stderr, "WARNING: DOCSITE_DATA_DIR=%q is not a directory, using default.\n", abs)
			return defaultDataDir()
		}
		testFile := filepath.Join(abs, ".docsite_write_test")
		f, err := os.Create(testFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: DOCSITE_DATA_DIR=%q is not writable, using default.\n", abs)
			return defaultDataDir()
		}
		f.Close()
		os.Remove(testFile)
		return abs
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: DOCSITE_DATA_DIR=%q cannot be created (%v), using default.\n", abs, err)
		return defaultDataDir()
	}
	return abs
}
