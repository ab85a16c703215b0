package scrape

import (
	"strings"

	"internship-scraper/internal/config"
)

// TitleFilter keeps software internship titles. Matching is substring based
// on the lower-cased title.
type TitleFilter struct {
	RequireAny []string
	IncludeAny []string
	ExcludeAny []string
}

func NewTitleFilter(cfg config.Config) TitleFilter {
	return TitleFilter{
		RequireAny: cfg.Filters.RequireAny,
		IncludeAny: cfg.Filters.IncludeAny,
		ExcludeAny: cfg.Filters.ExcludeAny,
	}
}

func (f TitleFilter) Keep(title string) bool {
	keep, _ := f.Check(title)
	return keep
}

// Check is Keep with the reason a title was dropped.
func (f TitleFilter) Check(title string) (keep bool, reason string) {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return false, "empty_title"
	}

	if len(f.RequireAny) > 0 && !containsAny(t, f.RequireAny) {
		return false, "not_internship"
	}
	if containsAny(t, f.ExcludeAny) {
		return false, "excluded"
	}
	if len(f.IncludeAny) > 0 && !containsAny(t, f.IncludeAny) {
		return false, "no_keyword_match"
	}
	return true, ""
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		n := strings.ToLower(strings.TrimSpace(needle))
		if n == "" {
			continue
		}
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
