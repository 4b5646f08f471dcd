package build

import (
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// SkipReason explains why a page was excluded from all output.
type SkipReason string

const (
	SkipDraft   SkipReason = "draft"
	SkipFuture  SkipReason = "future"
	SkipExpired SkipReason = "expired"
)

// Exclude decides whether a page is excluded from every output artifact.
// It is a pure function of (page, config, now). The three predicates are
// independent and order-insensitive; any one excludes the page. The
// first matching reason (in draft, future, expired order) is reported.
func Exclude(p *content.Page, cfg *config.Config, now time.Time) (SkipReason, bool) {
	if p.Draft && !cfg.BuildDrafts {
		return SkipDraft, true
	}
	if !p.Date.IsZero() && p.Date.After(now) && !cfg.BuildFuture {
		return SkipFuture, true
	}
	if p.ExpiryDate != nil && p.ExpiryDate.Before(now) && !cfg.BuildExpired {
		return SkipExpired, true
	}
	return "", false
}

// Filter partitions pages into the included set and per-reason skip
// counts. Included pages keep their input order.
func Filter(pages []*content.Page, cfg *config.Config, now time.Time) (included []*content.Page, skipped map[SkipReason]int) {
	skipped = map[SkipReason]int{}
	for _, p := range pages {
		if reason, excluded := Exclude(p, cfg, now); excluded {
			skipped[reason]++
			continue
		}
		included = append(included, p)
	}
	return included, skipped
}
