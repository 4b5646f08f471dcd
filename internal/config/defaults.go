package config

func (c *Config) applyDefaults() {
	if c.LanguageCode == "" {
		c.LanguageCode = "en"
	}
	if c.Paginate == 0 {
		c.Paginate = 10
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.PublishDir == "" {
		c.PublishDir = "public"
	}
	if c.Sitemap.ChangeFreq == "" {
		c.Sitemap.ChangeFreq = "weekly"
	}
	if c.Sitemap.Priority == nil {
		p := 0.5
		c.Sitemap.Priority = &p
	}
	if c.Sitemap.Filename == "" {
		c.Sitemap.Filename = "sitemap.xml"
	}
	if c.Markup.SummaryLength == 0 {
		c.Markup.SummaryLength = 70
	}
	if c.Server.Port == 0 {
		c.Server.Port = 1313
	}
	if c.Params == nil {
		c.Params = map[string]any{}
	}
	if c.Outputs == nil {
		c.Outputs = map[string][]string{
			"home":    {FormatHTML, FormatRSS, FormatJSON, FormatSitemap},
			"section": {FormatHTML, FormatRSS},
		}
	}
}
