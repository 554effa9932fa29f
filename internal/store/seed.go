package store

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

//go:embed seed.yaml
var defaultSeed []byte

type Seed struct {
	Users       []SeedUser       `yaml:"users"`
	Courses     []SeedCourse     `yaml:"courses"`
	Enrollments []SeedEnrollment `yaml:"enrollments"`
	Payments    []SeedPayment    `yaml:"payments"`
}

type SeedUser struct {
	ID        string      `yaml:"id"`
	Email     string      `yaml:"email"`
	FirstName string      `yaml:"first_name"`
	LastName  string      `yaml:"last_name"`
	Role      models.Role `yaml:"role"`
	Joined    time.Time   `yaml:"joined"`
}

type SeedCourse struct {
	ID          uint         `yaml:"id"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Instructor  string       `yaml:"instructor"`
	Category    string       `yaml:"category"`
	Level       models.Level `yaml:"level"`
	Price       float64      `yaml:"price"`
	MeetingLink string       `yaml:"meeting_link"`
}

type SeedEnrollment struct {
	UserID   string                  `yaml:"user_id"`
	CourseID uint                    `yaml:"course_id"`
	Status   models.EnrollmentStatus `yaml:"status"`
	Progress int                     `yaml:"progress"`
}

type SeedPayment struct {
	UserID          string               `yaml:"user_id"`
	CourseID        uint                 `yaml:"course_id"`
	Method          models.PaymentMethod `yaml:"method"`
	Status          models.PaymentStatus `yaml:"status"`
	ReceiptFilename string               `yaml:"receipt_filename"`
	SubmittedAt     time.Time            `yaml:"submitted_at"`
}

// LoadSeed reads a YAML seed file. An empty path selects the built-in demo
// data.
func LoadSeed(path string) (*Seed, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		raw = b
	}
	var sd Seed
	if err := yaml.Unmarshal(raw, &sd); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &sd, nil
}

// Apply inserts the seed into repo. It does nothing when repo already has
// courses, so re-running against a populated database is safe.
func (sd *Seed) Apply(ctx context.Context, repo Repository) error {
	existing, err := repo.ListCourses(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("seed skipped, catalog already populated", "courses", len(existing))
		return nil
	}

	for _, su := range sd.Users {
		if su.ID == "" {
			id, err := utils.GenerateUserID()
			if err != nil {
				return err
			}
			su.ID = id
		}
		u := &models.User{
			ID:        su.ID,
			Email:     su.Email,
			FirstName: su.FirstName,
			LastName:  su.LastName,
			Role:      su.Role,
			Active:    true,
			CreatedAt: su.Joined,
		}
		if err := repo.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", su.ID, err)
		}
	}

	courses := make(map[uint]models.Course, len(sd.Courses))
	for _, sc := range sd.Courses {
		if !sc.Level.Valid() {
			return fmt.Errorf("seed course %d: unknown level %q", sc.ID, sc.Level)
		}
		c := &models.Course{
			ID:          sc.ID,
			Title:       sc.Title,
			Description: sc.Description,
			Instructor:  sc.Instructor,
			Category:    sc.Category,
			Level:       sc.Level,
			Price:       sc.Price,
			MeetingLink: sc.MeetingLink,
		}
		if err := repo.CreateCourse(ctx, c); err != nil {
			return fmt.Errorf("seed course %d: %w", sc.ID, err)
		}
		courses[c.ID] = *c
	}

	type key struct {
		user   string
		course uint
	}
	enrollments := make(map[key]uint, len(sd.Enrollments))
	for _, se := range sd.Enrollments {
		course, ok := courses[se.CourseID]
		if !ok {
			return fmt.Errorf("seed enrollment %s/%d: unknown course", se.UserID, se.CourseID)
		}
		e := &models.Enrollment{UserID: se.UserID, CourseID: se.CourseID, Status: se.Status, Progress: se.Progress}
		st, err := enrollment.StateOf(*e)
		if err != nil {
			return fmt.Errorf("seed enrollment %s/%d: %w", se.UserID, se.CourseID, err)
		}
		if a, ok := st.(enrollment.Active); ok {
			st = enrollment.NewActive(a.Progress, course.MeetingLink)
		}
		enrollment.Apply(e, st)
		if err := repo.CreateEnrollment(ctx, e); err != nil {
			return fmt.Errorf("seed enrollment %s/%d: %w", se.UserID, se.CourseID, err)
		}
		enrollments[key{se.UserID, se.CourseID}] = e.ID
	}

	for _, sp := range sd.Payments {
		eid, ok := enrollments[key{sp.UserID, sp.CourseID}]
		if !ok {
			return fmt.Errorf("seed payment %s/%d: no enrollment", sp.UserID, sp.CourseID)
		}
		p := &models.Payment{
			ID:              utils.GenerateID(),
			EnrollmentID:    eid,
			UserID:          sp.UserID,
			CourseID:        sp.CourseID,
			Method:          sp.Method,
			Status:          sp.Status,
			Amount:          courses[sp.CourseID].Price,
			ReceiptFilename: sp.ReceiptFilename,
			SubmittedAt:     sp.SubmittedAt,
		}
		if sp.Status != models.PaymentStatusPending {
			decided := sp.SubmittedAt.Add(24 * time.Hour)
			p.DecidedAt = &decided
		}
		if err := repo.CreatePayment(ctx, p, nil); err != nil {
			return fmt.Errorf("seed payment %s/%d: %w", sp.UserID, sp.CourseID, err)
		}
	}

	slog.Info("seed applied",
		"users", len(sd.Users),
		"courses", len(sd.Courses),
		"enrollments", len(sd.Enrollments),
		"payments", len(sd.Payments),
	)
	return nil
}
