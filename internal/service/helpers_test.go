package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/events"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fixture struct {
	db          *gorm.DB
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	enrollments repository.EnrollmentRepository
	attendance  repository.AttendanceRepository
	users       repository.UserRepository
	activity    repository.ActivityLogRepository
	identities  IdentityResolver
	ledger      WeightLedger
	validate    *validator.Validate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))

	f := &fixture{
		db:          db,
		courses:     repository.NewCourseRepository(db),
		assignments: repository.NewAssignmentRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		attendance:  repository.NewAttendanceRepository(db),
		users:       repository.NewUserRepository(db),
		activity:    repository.NewActivityLogRepository(db),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
	f.identities = NewIdentityResolver(f.users, testLogger())
	f.ledger = NewWeightLedger(f.courses, f.assignments, testLogger())
	return f
}

func (f *fixture) course(t *testing.T, id string, mode models.WeightMode, unit models.WeightUnit, categories models.CategoryWeights) models.Course {
	t.Helper()
	if categories == nil {
		categories = models.CategoryWeights{}
	}
	course := models.Course{
		ID:              id,
		Title:           "Course " + id,
		OwnerID:         "teacher-1",
		WeightMode:      mode,
		WeightUnit:      unit,
		CategoryWeights: datatypes.NewJSONType(categories),
	}
	require.NoError(t, f.db.Create(&course).Error)
	return course
}

func (f *fixture) assignment(t *testing.T, courseID, id string, category models.AssignmentCategory, weight, maxPoints float64) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		ID:        id,
		CourseID:  courseID,
		Title:     "Assignment " + id,
		Category:  category,
		Weight:    weight,
		MaxPoints: maxPoints,
		DueAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		OwnerID:   "teacher-1",
	}
	require.NoError(t, f.db.Create(&assignment).Error)
	return assignment
}

// submit stores a submission; a nil points value leaves it ungraded.
func (f *fixture) submit(t *testing.T, assignment models.Assignment, studentKey string, points *float64) models.Submission {
	t.Helper()
	submission := models.Submission{
		ID:           models.SubmissionKey(assignment.ID, studentKey),
		AssignmentID: assignment.ID,
		CourseID:     assignment.CourseID,
		StudentKey:   studentKey,
		ArtifactRef:  "artifact://" + assignment.ID,
		SubmittedAt:  time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC),
	}
	if points != nil {
		gradedAt := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
		grader := "teacher-1"
		submission.Grade = models.SubmissionGrade{Points: points, GradedAt: &gradedAt, GraderID: &grader}
	}
	require.NoError(t, f.db.Create(&submission).Error)
	return submission
}

func (f *fixture) user(t *testing.T, id, subjectID, email string) models.UserIdentity {
	t.Helper()
	user := models.UserIdentity{ID: id, SubjectID: subjectID, Email: email, DisplayName: id, Role: "student"}
	require.NoError(t, f.users.Create(context.Background(), &user))
	return user
}

func points(v float64) *float64 {
	return &v
}

type recordingInvalidator struct {
	mu      sync.Mutex
	courses []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, courseID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses = append(r.courses, courseID)
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return r.err
}
