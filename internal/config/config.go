// Package config loads and validates the site configuration.
//
// The configuration is read once at startup and treated as immutable for
// the lifetime of a build: every consumer receives the *Config value
// explicitly, there is no process-wide singleton.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Config represents the site configuration
type Config struct {
	BaseURL      string `yaml:"baseURL"`
	LanguageCode string `yaml:"languageCode,omitempty"`
	Title        string `yaml:"title"`
	Paginate     int    `yaml:"paginate,omitempty"`

	BuildDrafts  bool `yaml:"buildDrafts,omitempty"`
	BuildFuture  bool `yaml:"buildFuture,omitempty"`
	BuildExpired bool `yaml:"buildExpired,omitempty"`

	EnableGitInfo bool `yaml:"enableGitInfo,omitempty"`

	ContentDir string `yaml:"contentDir,omitempty"`
	PublishDir string `yaml:"publishDir,omitempty"`

	Sitemap SitemapConfig `yaml:"sitemap,omitempty"`
	Minify  MinifyConfig  `yaml:"minify,omitempty"`
	Markup  MarkupConfig  `yaml:"markup,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`

	// Params is an opaque bag passed through to templates without
	// validation. Unknown keys are preserved verbatim.
	Params map[string]any `yaml:"params,omitempty"`

	// Outputs maps a logical section name (home, section, taxonomy)
	// to the ordered list of output formats to emit for it.
	Outputs map[string][]string `yaml:"outputs,omitempty"`

	Languages map[string]Language `yaml:"languages,omitempty"`

	Menu []MenuEntry `yaml:"menu,omitempty"`
}

// SitemapConfig controls the generated sitemap document. Priority is a
// pointer so an explicit 0 survives defaulting.
type SitemapConfig struct {
	ChangeFreq string   `yaml:"changefreq,omitempty"`
	Priority   *float64 `yaml:"priority,omitempty"`
	Filename   string   `yaml:"filename,omitempty"`
}

// MinifyConfig enables per-format output minification.
type MinifyConfig struct {
	HTML bool `yaml:"html,omitempty"`
	XML  bool `yaml:"xml,omitempty"`
	JSON bool `yaml:"json,omitempty"`
}

// MarkupConfig controls Markdown rendering.
type MarkupConfig struct {
	// Unsafe passes raw HTML in Markdown sources through to the output
	// unsanitized.
	Unsafe bool `yaml:"unsafe,omitempty"`
	// TOC enables table-of-contents rendering by default; individual
	// pages may override with showToc.
	TOC bool `yaml:"toc,omitempty"`
	// SummaryLength is the number of words in generated summaries.
	SummaryLength int `yaml:"summaryLength,omitempty"`
}

// ServerConfig controls serve mode.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
	// RebuildInterval triggers periodic full rebuilds so future-dated
	// posts publish without a file change. Zero disables the schedule.
	RebuildInterval Duration `yaml:"rebuildInterval,omitempty"`
}

// Duration wraps time.Duration so YAML values like "30m" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Language holds per-language metadata.
type Language struct {
	LanguageName string `yaml:"languageName,omitempty"`
	Weight       int    `yaml:"weight,omitempty"`
	// Taxonomies maps singular taxonomy names to their plural
	// front-matter keys (e.g. "tag" -> "tags").
	Taxonomies map[string]string `yaml:"taxonomies,omitempty"`
}

// MenuEntry is one navigation entry.
type MenuEntry struct {
	Identifier string `yaml:"identifier,omitempty"`
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	Weight     int    `yaml:"weight,omitempty"`
}

// Output format identifiers accepted in the outputs mapping.
const (
	FormatHTML    = "html"
	FormatRSS     = "rss"
	FormatJSON    = "json"
	FormatSitemap = "sitemap"
)

// Load loads the configuration from the specified file.
//
// A .env file (if present) is loaded first and ${VAR} references in the
// YAML are expanded, matching how deployment secrets reach the config.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, berrors.WrapConfigError(err, "config", "failed to read configuration file")
	}

	return Parse(data)
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, berrors.WrapConfigError(err, "config", "failed to unmarshal configuration")
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// TaxonomiesFor resolves the taxonomy mapping for a language code,
// falling back to the default tag/category/series set when the language
// declares none.
func (c *Config) TaxonomiesFor(lang string) map[string]string {
	if l, ok := c.Languages[lang]; ok && len(l.Taxonomies) > 0 {
		return l.Taxonomies
	}
	return map[string]string{
		"tag":      "tags",
		"category": "categories",
		"series":   "series",
	}
}

// OutputsFor returns the configured output formats for a section kind,
// falling back to HTML only.
func (c *Config) OutputsFor(kind string) []string {
	if formats, ok := c.Outputs[kind]; ok {
		return formats
	}
	return []string{FormatHTML}
}
