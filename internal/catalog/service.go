package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

// Source provides the full course list in display order and single-course
// lookups.
type Source interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
}

type Result struct {
	Query      Query           `json:"query"`
	Courses    []models.Course `json:"courses"`
	Categories []string        `json:"categories"`
	Levels     []string        `json:"levels"`
	Total      int             `json:"total"`
}

// Service answers catalog queries. Filter runs only when the (list version,
// query) pair has not been seen; cache failures fall back to filtering.
type Service struct {
	src   Source
	cache ResultCache
	ttl   time.Duration
}

func NewService(src Source, cache ResultCache, ttl time.Duration) *Service {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	return &Service{src: src, cache: cache, ttl: ttl}
}

func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	courses, err := s.src.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	q = q.Normalize()
	categories, levels := Facets(courses)
	res := &Result{Query: q, Categories: categories, Levels: levels, Total: len(courses)}

	key := cacheKey(Version(courses), q)
	ids, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("catalog cache read failed", "error", err)
	}
	if ok {
		res.Courses = pick(courses, ids)
		return res, nil
	}

	res.Courses = Filter(courses, q)
	ids = make([]uint, len(res.Courses))
	for i, c := range res.Courses {
		ids[i] = c.ID
	}
	if err := s.cache.Set(ctx, key, ids, s.ttl); err != nil {
		slog.Warn("catalog cache write failed", "error", err)
	}
	return res, nil
}

// Facets returns the facet option lists of the current course list.
func (s *Service) Facets(ctx context.Context) (categories, levels []string, err error) {
	courses, err := s.src.ListCourses(ctx)
	if err != nil {
		return nil, nil, err
	}
	categories, levels = Facets(courses)
	return categories, levels, nil
}

// Course returns one course; the source's not-found error passes through.
func (s *Service) Course(ctx context.Context, id uint) (*models.Course, error) {
	return s.src.GetCourse(ctx, id)
}

// pick returns the courses whose ids are in ids, keeping the order of courses.
func pick(courses []models.Course, ids []uint) []models.Course {
	want := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]models.Course, 0, len(ids))
	for _, c := range courses {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}
