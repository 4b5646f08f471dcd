package config

import (
	"fmt"
	"net/url"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

var validChangeFreqs = map[string]struct{}{
	"always": {}, "hourly": {}, "daily": {}, "weekly": {},
	"monthly": {}, "yearly": {}, "never": {},
}

var validFormats = map[string]struct{}{
	FormatHTML: {}, FormatRSS: {}, FormatJSON: {}, FormatSitemap: {},
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return berrors.ConfigError("baseURL", "baseURL is required")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return berrors.ConfigError("baseURL", fmt.Sprintf("baseURL %q is not an absolute URL", c.BaseURL))
	}
	if c.Title == "" {
		return berrors.ConfigError("title", "title is required")
	}
	if c.Paginate <= 0 {
		return berrors.ConfigError("paginate", fmt.Sprintf("paginate must be a positive integer, got %d", c.Paginate))
	}
	if _, ok := validChangeFreqs[c.Sitemap.ChangeFreq]; !ok {
		return berrors.ConfigError("sitemap.changefreq", fmt.Sprintf("unknown change frequency %q", c.Sitemap.ChangeFreq))
	}
	if p := *c.Sitemap.Priority; p < 0 || p > 1 {
		return berrors.ConfigError("sitemap.priority", fmt.Sprintf("priority must be within [0, 1], got %v", p))
	}
	for kind, formats := range c.Outputs {
		for _, f := range formats {
			if _, ok := validFormats[f]; !ok {
				return berrors.ConfigError("outputs."+kind, fmt.Sprintf("unknown output format %q", f))
			}
		}
	}
	for i, m := range c.Menu {
		if m.Name == "" {
			return berrors.ConfigError(fmt.Sprintf("menu[%d].name", i), "menu entries require a name")
		}
		if m.URL == "" {
			return berrors.ConfigError(fmt.Sprintf("menu[%d].url", i), "menu entries require a url")
		}
	}
	if c.Server.RebuildInterval < 0 {
		return berrors.ConfigError("server.rebuildInterval", "rebuild interval must not be negative")
	}
	return nil
}
