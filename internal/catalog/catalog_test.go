package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

func sampleCourses() []models.Course {
	return []models.Course{
		{ID: 1, Title: "Next.js for Beginners", Description: "Learn the fundamentals of building modern web apps with Next.js.", Category: "Web Development", Level: models.LevelBeginner, Price: 49.99},
		{ID: 2, Title: "Mastering PostgreSQL", Description: "A deep dive into advanced PostgreSQL features for scalable databases.", Category: "Databases", Level: models.LevelAdvanced, Price: 99.99},
		{ID: 3, Title: "Advanced Tailwind CSS", Description: "Unlock the full potential of Tailwind CSS with utility-first design patterns.", Category: "Web Development", Level: models.LevelIntermediate, Price: 79.99},
		{ID: 4, Title: "Introduction to Prisma", Description: "The best way to work with databases in your Node.js & TypeScript apps.", Category: "Databases", Level: models.LevelBeginner, Price: 49.99},
		{ID: 5, Title: "React State Management", Description: "Compare and master different state management libraries in React.", Category: "Web Development", Level: models.LevelIntermediate, Price: 89.99},
		{ID: 6, Title: "Data Science with Python", Description: "Learn data analysis and visualization with Pandas, Matplotlib, and Scikit-learn.", Category: "Data Science", Level: models.LevelBeginner, Price: 129.99},
		{ID: 7, Title: "DevOps Fundamentals", Description: "An introduction to CI/CD, Docker, and Kubernetes.", Category: "DevOps", Level: models.LevelIntermediate, Price: 109.99},
	}
}

func ids(cs []models.Course) []uint {
	out := make([]uint, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestFilterIdentity(t *testing.T) {
	courses := sampleCourses()
	assert.Equal(t, courses, Filter(courses, Query{Search: "", Category: All, Level: All}))
	assert.Equal(t, courses, Filter(courses, Query{}))
	assert.Empty(t, Filter(nil, Query{}))
}

func TestFilterSearchIsCaseInsensitiveOverTitleAndDescription(t *testing.T) {
	courses := sampleCourses()
	assert.Equal(t, []uint{2, 4}, ids(Filter(courses, Query{Search: "DATABASES"})))
	assert.Equal(t, []uint{1}, ids(Filter(courses, Query{Search: "next.JS for"})))
	assert.Equal(t, []uint{7}, ids(Filter(courses, Query{Search: "kubernetes"})))
	assert.Empty(t, Filter(courses, Query{Search: "cobol"}))
}

func TestFilterSearchKeepsSurroundingWhitespace(t *testing.T) {
	courses := sampleCourses()
	assert.Empty(t, Filter([]models.Course{{ID: 1, Title: "Go", Description: "Go"}}, Query{Search: " go"}))
	assert.Equal(t, []uint{7}, ids(Filter(courses, Query{Search: " kubernetes"})))
	assert.Empty(t, Filter(courses, Query{Search: "  kubernetes "}))
	// a single space is a real term; every sample title contains one
	assert.Equal(t, courses, Filter(courses, Query{Search: " "}))
}

func TestFilterFacetsCombineWithAnd(t *testing.T) {
	courses := sampleCourses()
	assert.Equal(t, []uint{1, 3, 5}, ids(Filter(courses, Query{Category: "Web Development"})))
	assert.Equal(t, []uint{1, 4, 6}, ids(Filter(courses, Query{Level: "Beginner"})))
	assert.Equal(t, []uint{4}, ids(Filter(courses, Query{Category: "Databases", Level: "Beginner"})))
	assert.Equal(t, []uint{6}, ids(Filter(courses, Query{Search: "learn", Category: "Data Science", Level: "Beginner"})))
	// facet matching is exact
	assert.Empty(t, Filter(courses, Query{Category: "databases"}))
}

func TestFilterSoundAndComplete(t *testing.T) {
	courses := sampleCourses()
	queries := []Query{
		{Search: "a"},
		{Search: " data"},
		{Search: "data", Level: "Beginner"},
		{Category: "Web Development", Level: "Intermediate"},
		{Search: "re", Category: "Databases"},
		{Search: "x", Category: All, Level: "Advanced"},
	}
	for _, q := range queries {
		got := Filter(courses, q)
		in := map[uint]bool{}
		for _, c := range got {
			in[c.ID] = true
			term := strings.ToLower(q.Search)
			assert.True(t, strings.Contains(strings.ToLower(c.Title), term) || strings.Contains(strings.ToLower(c.Description), term))
			assert.True(t, q.Category == "" || q.Category == All || c.Category == q.Category)
			assert.True(t, q.Level == "" || q.Level == All || string(c.Level) == q.Level)
		}
		for _, c := range courses {
			if !in[c.ID] {
				assert.False(t, q.Matches(c), "course %d excluded but matches %+v", c.ID, q)
			}
		}
	}
}

func TestFacets(t *testing.T) {
	categories, levels := Facets(sampleCourses())
	assert.Equal(t, []string{All, "Web Development", "Databases", "Data Science", "DevOps"}, categories)
	assert.Equal(t, []string{All, "Beginner", "Advanced", "Intermediate"}, levels)

	categories, levels = Facets(nil)
	assert.Equal(t, []string{All}, categories)
	assert.Equal(t, []string{All}, levels)
}

type staticSource struct {
	courses []models.Course
	calls   int
}

func (s *staticSource) ListCourses(context.Context) ([]models.Course, error) {
	s.calls++
	return s.courses, nil
}

func (s *staticSource) GetCourse(_ context.Context, id uint) (*models.Course, error) {
	for _, c := range s.courses {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, errNoCourse
}

var errNoCourse = errors.New("no such course")

type countingCache struct {
	*MemoryCache
	hits, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]uint, bool, error) {
	ids, ok, err := c.MemoryCache.Get(ctx, key)
	if ok {
		c.hits++
	}
	return ids, ok, err
}

func (c *countingCache) Set(ctx context.Context, key string, ids []uint, ttl time.Duration) error {
	c.sets++
	return c.MemoryCache.Set(ctx, key, ids, ttl)
}

func TestServiceMemoizesPerQueryAndVersion(t *testing.T) {
	ctx := context.Background()
	src := &staticSource{courses: sampleCourses()}
	cache := &countingCache{MemoryCache: NewMemoryCache(10)}
	svc := NewService(src, cache, time.Minute)

	res, err := svc.Search(ctx, Query{Category: "Databases"})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 4}, ids(res.Courses))
	assert.Equal(t, 7, res.Total)
	assert.Equal(t, All, res.Query.Level)
	assert.Equal(t, 1, cache.sets)

	// same query, same list: served from cache
	res, err = svc.Search(ctx, Query{Category: "Databases", Level: All})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 4}, ids(res.Courses))
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets)

	// list changes: a new version forces re-evaluation
	src.courses = append(src.courses, models.Course{ID: 8, Title: "Redis in Practice", Category: "Databases", Level: models.LevelAdvanced, UpdatedAt: time.Now()})
	res, err = svc.Search(ctx, Query{Category: "Databases"})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 4, 8}, ids(res.Courses))
	assert.Equal(t, 2, cache.sets)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []uint{1}, time.Second))
	_, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "b", []uint{2}, 0))
	require.NoError(t, c.Set(ctx, "c", []uint{3}, 0))
	require.NoError(t, c.Set(ctx, "d", []uint{4}, 0))
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok, "cache is cleared once full")
	got, ok, _ := c.Get(ctx, "d")
	assert.True(t, ok)
	assert.Equal(t, []uint{4}, got)
}

func TestVersionChangesWithList(t *testing.T) {
	a := sampleCourses()
	b := sampleCourses()
	assert.Equal(t, Version(a), Version(b))
	b[2].UpdatedAt = time.Unix(5, 0)
	assert.NotEqual(t, Version(a), Version(b))
	assert.NotEqual(t, Version(a), Version(a[:3]))
}

func TestServiceCourseLookup(t *testing.T) {
	svc := NewService(&staticSource{courses: sampleCourses()}, nil, time.Minute)
	c, err := svc.Course(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Mastering PostgreSQL", c.Title)

	_, err = svc.Course(context.Background(), 42)
	assert.ErrorIs(t, err, errNoCourse)
}
