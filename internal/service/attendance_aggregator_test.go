package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

type failingAttendanceRepo struct{}

func (failingAttendanceRepo) ListByStudent(ctx context.Context, courseID, studentKey string) ([]models.AttendanceRecord, error) {
	return nil, errors.New("attendance store offline")
}

func (failingAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	return errors.New("attendance store offline")
}

func (f *fixture) mark(t *testing.T, courseID, studentKey string, day int, status models.AttendanceStatus) {
	t.Helper()
	record := models.AttendanceRecord{
		ID:         fmt.Sprintf("%s-%s-%d", courseID, studentKey, day),
		CourseID:   courseID,
		Date:       time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		StudentKey: studentKey,
		Status:     status,
	}
	require.NoError(t, f.attendance.Upsert(context.Background(), &record))
}

func TestAttendancePercentage(t *testing.T) {
	f := newFixture(t)
	f.mark(t, "c1", "p1", 1, models.AttendancePresent)
	f.mark(t, "c1", "p1", 2, models.AttendancePresent)
	f.mark(t, "c1", "p1", 3, models.AttendancePresent)
	f.mark(t, "c1", "p1", 4, models.AttendanceLate)
	f.mark(t, "c1", "p1", 5, models.AttendanceAbsent)

	aggregator := NewAttendanceAggregator(f.attendance, f.identities, testLogger())
	summary := aggregator.Summary(context.Background(), "p1", "c1")
	require.Equal(t, 80, summary.Percentage)
	require.Equal(t, 4, summary.Attended)
	require.Equal(t, 5, summary.Total)
}

func TestAttendanceExcusedCountsAgainstRatio(t *testing.T) {
	f := newFixture(t)
	f.mark(t, "c1", "p1", 1, models.AttendancePresent)
	f.mark(t, "c1", "p1", 2, models.AttendanceExcused)
	f.mark(t, "c1", "p1", 3, models.AttendanceExcused)

	aggregator := NewAttendanceAggregator(f.attendance, f.identities, testLogger())
	require.Equal(t, 33, aggregator.Percentage(context.Background(), "p1", "c1"))
}

func TestAttendanceWithoutRecordsIsFull(t *testing.T) {
	f := newFixture(t)
	aggregator := NewAttendanceAggregator(f.attendance, f.identities, testLogger())
	require.Equal(t, 100, aggregator.Percentage(context.Background(), "p1", "c1"))
}

func TestAttendanceResolvesProfileKey(t *testing.T) {
	f := newFixture(t)
	f.user(t, "profile-1", "subject-1", "ana@example.com")
	f.mark(t, "c1", "profile-1", 1, models.AttendancePresent)
	f.mark(t, "c1", "profile-1", 2, models.AttendanceAbsent)

	aggregator := NewAttendanceAggregator(f.attendance, f.identities, testLogger())
	require.Equal(t, 50, aggregator.Percentage(context.Background(), "subject-1", "c1"))
	require.Equal(t, 50, aggregator.Percentage(context.Background(), "ana@example.com", "c1"))
}

func TestAttendanceStoreFailureReportsFull(t *testing.T) {
	f := newFixture(t)
	aggregator := NewAttendanceAggregator(failingAttendanceRepo{}, f.identities, testLogger())
	require.Equal(t, 100, aggregator.Percentage(context.Background(), "p1", "c1"))
}
