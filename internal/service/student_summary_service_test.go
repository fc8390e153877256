package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

type failingEnrollmentRepo struct{}

func (failingEnrollmentRepo) ListByStudent(ctx context.Context, studentKey string, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error) {
	return nil, errors.New("enrollments offline")
}

func (failingEnrollmentRepo) Upsert(ctx context.Context, enrollment *models.Enrollment) error {
	return errors.New("enrollments offline")
}

func (f *fixture) enroll(t *testing.T, studentKey, courseID string, status models.EnrollmentStatus) {
	t.Helper()
	enrollment := models.Enrollment{ID: studentKey + "-" + courseID, StudentKey: studentKey, CourseID: courseID, Status: status}
	require.NoError(t, f.enrollments.Upsert(context.Background(), &enrollment))
}

func TestStudentSummary(t *testing.T) {
	f := newFixture(t)
	f.user(t, "profile-1", "subject-1", "ana@example.com")
	f.course(t, "c1", models.WeightModePerItem, models.WeightUnitAuto, nil)
	f.course(t, "c2", models.WeightModePerItem, models.WeightUnitAuto, nil)
	f.course(t, "c3", models.WeightModePerItem, models.WeightUnitAuto, nil)
	a1 := f.assignment(t, "c1", "a1", models.CategoryHomework, 100, 100)
	a2 := f.assignment(t, "c2", "a2", models.CategoryHomework, 100, 100)
	a3 := f.assignment(t, "c3", "a3", models.CategoryHomework, 100, 100)
	f.submit(t, a1, "subject-1", points(90))
	f.submit(t, a2, "subject-1", points(70))
	f.submit(t, a3, "subject-1", points(10))
	f.enroll(t, "profile-1", "c1", models.EnrollmentEnrolled)
	f.enroll(t, "profile-1", "c2", models.EnrollmentCompleted)
	f.enroll(t, "profile-1", "c3", models.EnrollmentDropped)
	f.enroll(t, "profile-1", "ghost", models.EnrollmentEnrolled)
	f.mark(t, "c1", "profile-1", 1, models.AttendancePresent)
	f.mark(t, "c1", "profile-1", 2, models.AttendanceAbsent)

	grades := NewGradeAggregator(f.courses, f.assignments, f.submissions, f.identities, nil, "", testLogger())
	attendance := NewAttendanceAggregator(f.attendance, f.identities, testLogger())
	svc := NewStudentSummaryService(f.enrollments, f.identities, grades, attendance, testLogger())

	summary, err := svc.Summary(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, "profile-1", summary.ProfileID)
	require.Len(t, summary.Courses, 2)
	require.Equal(t, "c1", summary.Courses[0].CourseID)
	require.Equal(t, 50, summary.Courses[0].AttendancePercentage)
	require.Equal(t, 100, summary.Courses[1].AttendancePercentage)
	require.InDelta(t, 80, summary.AveragePercentage, 1e-9)
	require.Equal(t, []string{"ghost"}, summary.SkippedCourses)
}

func TestStudentSummaryEnrollmentFailure(t *testing.T) {
	f := newFixture(t)
	grades := NewGradeAggregator(f.courses, f.assignments, f.submissions, f.identities, nil, "", testLogger())
	attendance := NewAttendanceAggregator(f.attendance, f.identities, testLogger())
	svc := NewStudentSummaryService(failingEnrollmentRepo{}, f.identities, grades, attendance, testLogger())

	_, err := svc.Summary(context.Background(), "p1")
	require.Error(t, err)
}
