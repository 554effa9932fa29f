package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

// MemStore is a process-local Repository used for demos and tests. Every
// read returns copies so callers cannot mutate stored rows.
type MemStore struct {
	mu sync.RWMutex

	users       map[string]models.User
	courses     map[uint]models.Course
	enrollments map[uint]models.Enrollment
	payments    map[string]models.Payment

	nextCourseID     uint
	nextEnrollmentID uint

	now func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:       make(map[string]models.User),
		courses:     make(map[uint]models.Course),
		enrollments: make(map[uint]models.Enrollment),
		payments:    make(map[string]models.Payment),
		now:         time.Now,
	}
}

/* ------------------ Courses ------------------ */

func (m *MemStore) ListCourses(ctx context.Context) ([]models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemStore) CreateCourse(ctx context.Context, c *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.nextCourseID + 1
	}
	if _, ok := m.courses[c.ID]; ok {
		return ErrDuplicate
	}
	if c.ID > m.nextCourseID {
		m.nextCourseID = c.ID
	}
	m.stamp(&c.CreatedAt, &c.UpdatedAt)
	m.courses[c.ID] = *c
	return nil
}

func (m *MemStore) CourseEnrollmentCounts(ctx context.Context) (map[uint]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uint]int64)
	for _, e := range m.enrollments {
		if e.Status == models.EnrollmentActive {
			out[e.CourseID]++
		}
	}
	return out, nil
}

/* ------------------ Users ------------------ */

func (m *MemStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, other := range m.users {
		if other.Email == u.Email {
			return ErrDuplicate
		}
	}
	m.stamp(&u.CreatedAt, &u.UpdatedAt)
	m.users[u.ID] = *u
	return nil
}

func (m *MemStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemStore) ListStudents(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if u.Role == models.RoleStudent {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemStore) StudentEnrollmentCounts(ctx context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64)
	for _, e := range m.enrollments {
		out[e.UserID]++
	}
	return out, nil
}

/* ------------------ Enrollments ------------------ */

func (m *MemStore) CreateEnrollment(ctx context.Context, e *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.enrollments {
		if other.UserID == e.UserID && other.CourseID == e.CourseID {
			return ErrDuplicate
		}
	}
	m.nextEnrollmentID++
	e.ID = m.nextEnrollmentID
	m.stamp(&e.CreatedAt, &e.UpdatedAt)
	stored := *e
	stored.Course = models.Course{}
	stored.User = models.User{}
	m.enrollments[e.ID] = stored
	return nil
}

func (m *MemStore) GetEnrollment(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			e.Course = m.courses[e.CourseID]
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) ListEnrollmentsByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			e.Course = m.courses[e.CourseID]
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// checkStateChange must be called with the write lock held.
func (m *MemStore) checkStateChange(change *StateChange) error {
	if change == nil || change.Enrollment == nil {
		return nil
	}
	cur, ok := m.enrollments[change.Enrollment.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != change.From {
		return ErrStaleState
	}
	return nil
}

func (m *MemStore) writeStateChange(change *StateChange) {
	if change == nil || change.Enrollment == nil {
		return
	}
	cur := m.enrollments[change.Enrollment.ID]
	cur.Status = change.Enrollment.Status
	cur.Progress = change.Enrollment.Progress
	cur.MeetingLink = change.Enrollment.MeetingLink
	cur.UpdatedAt = m.now()
	m.enrollments[cur.ID] = cur
}

/* ------------------ Payments ------------------ */

func (m *MemStore) CreatePayment(ctx context.Context, p *models.Payment, change *StateChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ID]; ok {
		return ErrDuplicate
	}
	if err := m.checkStateChange(change); err != nil {
		return err
	}
	m.stamp(&p.CreatedAt, &p.UpdatedAt)
	stored := *p
	stored.Course = models.Course{}
	stored.User = models.User{}
	m.payments[p.ID] = stored
	m.writeStateChange(change)
	return nil
}

func (m *MemStore) TransitionPayment(ctx context.Context, p *models.Payment, from models.PaymentStatus, change *StateChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.payments[p.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != from {
		return ErrStaleState
	}
	if err := m.checkStateChange(change); err != nil {
		return err
	}
	cur.Status = p.Status
	cur.DecidedAt = p.DecidedAt
	cur.DecidedBy = p.DecidedBy
	cur.Metadata = p.Metadata
	cur.ReceiptKey = p.ReceiptKey
	cur.UpdatedAt = m.now()
	m.payments[cur.ID] = cur
	m.writeStateChange(change)
	return nil
}

func (m *MemStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.load(&p)
	return &p, nil
}

func (m *MemStore) FindPendingReceiptByDigest(ctx context.Context, digest string) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.IsPendingReceipt() && p.ReceiptDigest == digest {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) ListPendingReceipts(ctx context.Context) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.IsPendingReceipt() {
			m.load(&p)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *MemStore) Revenue(ctx context.Context) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, p := range m.payments {
		if p.Status == models.PaymentStatusApproved || p.Status == models.PaymentStatusCompleted {
			total += p.Amount
		}
	}
	return total, nil
}

/* ------------------ Health ------------------ */

func (m *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemStore) Close() error { return nil }

/* ------------------ Helpers ------------------ */

func (m *MemStore) load(p *models.Payment) {
	p.User = m.users[p.UserID]
	p.Course = m.courses[p.CourseID]
}

func (m *MemStore) stamp(created, updated *time.Time) {
	now := m.now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
