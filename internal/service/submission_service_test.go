package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

func TestSubmissionUpsertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.user(t, "profile-1", "subject-1", "ana@example.com")
	f.course(t, "c1", models.WeightModePerItem, models.WeightUnitAuto, nil)
	f.assignment(t, "c1", "a1", models.CategoryHomework, 100, 100)
	grades := &recordingInvalidator{}
	svc := NewSubmissionService(f.submissions, f.assignments, f.identities, f.validate, grades, testLogger())
	student := ActivityActor{ID: "subject-1", Role: "student"}
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "a1", "profile-1", dto.SubmissionUpsertRequest{ArtifactRef: "repo://v1"}, student)
	require.NoError(t, err)
	require.Equal(t, "a1_subject-1", first.ID)
	require.Equal(t, "subject-1", first.StudentKey)

	second, err := svc.Upsert(ctx, "a1", "subject-1", dto.SubmissionUpsertRequest{ArtifactRef: "repo://v2"}, student)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "repo://v2", second.ArtifactRef)

	var count int64
	require.NoError(t, f.db.Model(&models.Submission{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.Equal(t, []string{"c1", "c1"}, grades.courses)
}

func TestSubmissionUpsertRejectsOtherStudents(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1", models.WeightModePerItem, models.WeightUnitAuto, nil)
	f.assignment(t, "c1", "a1", models.CategoryHomework, 100, 100)
	svc := NewSubmissionService(f.submissions, f.assignments, f.identities, f.validate, nil, testLogger())

	_, err := svc.Upsert(context.Background(), "a1", "someone-else", dto.SubmissionUpsertRequest{ArtifactRef: "repo://x"}, ActivityActor{ID: "s1", Role: "student"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Upsert(context.Background(), "missing", "s1", dto.SubmissionUpsertRequest{ArtifactRef: "repo://x"}, ActivityActor{ID: "s1", Role: "student"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGradeSubmission(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1", models.WeightModePerItem, models.WeightUnitAuto, nil)
	a1 := f.assignment(t, "c1", "a1", models.CategoryHomework, 100, 40)
	f.submit(t, a1, "s1", nil)
	grades := &recordingInvalidator{}
	svc := NewGradingService(f.submissions, f.assignments, f.identities, f.validate, NewActivityService(f.activity, testLogger()), grades, testLogger()).(*gradingService)
	gradedAt := time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return gradedAt }
	ctx := context.Background()

	graded, err := svc.Grade(ctx, "a1", "s1", dto.GradeSubmissionRequest{Points: points(30), Feedback: "Nice <script>alert(1)</script><b>work</b>"}, teacher)
	require.NoError(t, err)
	require.InDelta(t, 75, *graded.Grade.Percent, 1e-9)
	require.Equal(t, "teacher-1", *graded.Grade.GraderID)
	require.True(t, graded.Grade.GradedAt.Equal(gradedAt))
	require.Equal(t, "Nice <b>work</b>", graded.Feedback)
	require.Equal(t, []string{"c1"}, grades.courses)

	svc.now = func() time.Time { return gradedAt.Add(time.Hour) }
	again, err := svc.Grade(ctx, "a1", "s1", dto.GradeSubmissionRequest{Points: points(30), Feedback: "Nice <b>work</b>"}, teacher)
	require.NoError(t, err)
	require.True(t, again.Grade.GradedAt.Equal(gradedAt))
	require.Len(t, grades.courses, 1)
}

func TestGradeSubmissionBounds(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1", models.WeightModePerItem, models.WeightUnitAuto, nil)
	a1 := f.assignment(t, "c1", "a1", models.CategoryHomework, 100, 40)
	f.submit(t, a1, "s1", nil)
	svc := NewGradingService(f.submissions, f.assignments, f.identities, f.validate, nil, nil, testLogger())
	ctx := context.Background()

	_, err := svc.Grade(ctx, "a1", "s1", dto.GradeSubmissionRequest{Points: points(41)}, teacher)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "points", verr.Field)

	_, err = svc.Grade(ctx, "a1", "s1", dto.GradeSubmissionRequest{Points: points(-1)}, teacher)
	require.Error(t, err)

	_, err = svc.Grade(ctx, "a1", "nobody", dto.GradeSubmissionRequest{Points: points(10)}, teacher)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResubmissionKeepsGrade(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1", models.WeightModePerItem, models.WeightUnitAuto, nil)
	a1 := f.assignment(t, "c1", "a1", models.CategoryHomework, 100, 100)
	f.submit(t, a1, "s1", points(88))
	svc := NewSubmissionService(f.submissions, f.assignments, f.identities, f.validate, nil, testLogger())

	resubmitted, err := svc.Upsert(context.Background(), "a1", "s1", dto.SubmissionUpsertRequest{ArtifactRef: "repo://late"}, ActivityActor{ID: "s1", Role: "student"})
	require.NoError(t, err)
	require.Equal(t, "repo://late", resubmitted.ArtifactRef)
	require.NotNil(t, resubmitted.Grade.Points)
	require.Equal(t, 88.0, *resubmitted.Grade.Points)
}
