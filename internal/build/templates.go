package build

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// templateKinds are the overridable layout names. A site may shadow any
// of them by placing layouts/<kind>.html next to its config file.
var templateKinds = []string{"page", "list", "terms"}

// Templates holds one parsed template set per layout kind, each paired
// with the shared base skeleton.
type Templates struct {
	sets map[string]*template.Template
}

// LoadTemplates parses the embedded default layouts, then applies any
// overrides found in layoutsDir ("" disables overrides).
func LoadTemplates(layoutsDir string) (*Templates, error) {
	base, err := defaultTemplates.ReadFile("templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("read embedded base template: %w", err)
	}
	if layoutsDir != "" {
		if override, readErr := os.ReadFile(filepath.Join(layoutsDir, "base.html")); readErr == nil {
			base = override
		}
	}

	t := &Templates{sets: map[string]*template.Template{}}
	for _, kind := range templateKinds {
		body, err := defaultTemplates.ReadFile("templates/" + kind + ".html")
		if err != nil {
			return nil, fmt.Errorf("read embedded %s template: %w", kind, err)
		}
		if layoutsDir != "" {
			if override, readErr := os.ReadFile(filepath.Join(layoutsDir, kind+".html")); readErr == nil {
				body = override
			}
		}

		set, err := template.New("base").Parse(string(base))
		if err != nil {
			return nil, fmt.Errorf("parse base template: %w", err)
		}
		if _, err := set.Parse(string(body)); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		t.sets[kind] = set
	}

	// Custom page layouts referenced by front matter (layout: wide) are
	// loaded lazily from layoutsDir when present.
	if layoutsDir != "" {
		entries, err := os.ReadDir(layoutsDir)
		if err == nil {
			for _, e := range entries {
				name := e.Name()
				ext := filepath.Ext(name)
				kind := name[:len(name)-len(ext)]
				if ext != ".html" || kind == "base" {
					continue
				}
				if _, known := t.sets[kind]; known {
					continue
				}
				body, readErr := os.ReadFile(filepath.Join(layoutsDir, name))
				if readErr != nil {
					continue
				}
				set, parseErr := template.New("base").Parse(string(base))
				if parseErr != nil {
					return nil, fmt.Errorf("parse base template: %w", parseErr)
				}
				if _, parseErr := set.Parse(string(body)); parseErr != nil {
					return nil, fmt.Errorf("parse layout %s: %w", name, parseErr)
				}
				t.sets[kind] = set
			}
		}
	}

	return t, nil
}

// For returns the template set for a layout kind, falling back to the
// standard page layout for unknown per-page overrides.
func (t *Templates) For(kind string) *template.Template {
	if set, ok := t.sets[kind]; ok {
		return set
	}
	return t.sets["page"]
}
