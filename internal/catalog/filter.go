// Package catalog filters the course list by free text and facets.
package catalog

import (
	"strings"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

// All is the facet value meaning "unfiltered".
const All = "All"

type Query struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Level    string `json:"level"`
}

// Normalize maps empty facets to All. The search term is matched as given;
// only "" disables it.
func (q Query) Normalize() Query {
	if q.Category == "" {
		q.Category = All
	}
	if q.Level == "" {
		q.Level = All
	}
	return q
}

// Matches reports whether c satisfies every predicate of q.
func (q Query) Matches(c models.Course) bool {
	q = q.Normalize()
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			return false
		}
	}
	if q.Category != All && c.Category != q.Category {
		return false
	}
	if q.Level != All && string(c.Level) != q.Level {
		return false
	}
	return true
}

// Filter returns the courses matching q, in input order.
func Filter(courses []models.Course, q Query) []models.Course {
	q = q.Normalize()
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if q.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// Facets returns the distinct categories and levels of courses in first-seen
// order, each prefixed with All.
func Facets(courses []models.Course) (categories, levels []string) {
	categories = []string{All}
	levels = []string{All}
	seenCat := map[string]struct{}{}
	seenLvl := map[string]struct{}{}
	for _, c := range courses {
		if _, ok := seenCat[c.Category]; !ok {
			seenCat[c.Category] = struct{}{}
			categories = append(categories, c.Category)
		}
		if _, ok := seenLvl[string(c.Level)]; !ok {
			seenLvl[string(c.Level)] = struct{}{}
			levels = append(levels, string(c.Level))
		}
	}
	return categories, levels
}
