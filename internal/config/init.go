package config

import (
	"fmt"
	"os"
)

const exampleConfig = `baseURL: https://example.com
languageCode: en-us
title: My Blog
paginate: 10

buildDrafts: false
buildFuture: false
buildExpired: false

enableGitInfo: false

sitemap:
  changefreq: weekly
  priority: 0.5
  filename: sitemap.xml

minify:
  html: true

markup:
  unsafe: false
  toc: true

params:
  author: Jane Doe
  keywords: [blog, go]
  defaultTheme: auto
  profileMode:
    enabled: false
  socialIcons:
    - name: github
      url: https://github.com/example
  fuseOpts:
    threshold: 0.4
    keys: [title, summary, content]

outputs:
  home: [html, rss, json, sitemap]
  section: [html, rss]

languages:
  en:
    languageName: English
    weight: 1
    taxonomies:
      tag: tags
      category: categories
      series: series

menu:
  - identifier: posts
    name: Posts
    url: /posts/
    weight: 10
  - identifier: tags
    name: Tags
    url: /tags/
    weight: 20
  - identifier: about
    name: About
    url: /about/
    weight: 30
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
