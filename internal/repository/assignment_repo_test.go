package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

func TestAssignmentRepositoryListByCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	seedCourse(t, db, "c1", models.WeightModePerItem)
	seedCourse(t, db, "c2", models.WeightModePerItem)
	seedAssignment(t, db, "c1", "a1", 40)
	seedAssignment(t, db, "c1", "a2", 60)
	seedAssignment(t, db, "c2", "b1", 10)

	assignments, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWeightScopeCommitsAndBumpsRevision(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	seedCourse(t, db, "c1", models.WeightModePerItem)
	seedAssignment(t, db, "c1", "a1", 40)

	err := repo.WithWeightScope(context.Background(), "c1", func(scope WeightScope) error {
		require.Equal(t, "c1", scope.Course().ID)
		require.Equal(t, int64(1), scope.Course().WeightRevision)

		existing, err := scope.Assignments()
		require.NoError(t, err)
		require.Len(t, existing, 1)

		return scope.Save(&models.Assignment{
			ID:        "a2",
			Title:     "Quiz",
			Category:  models.CategoryQuiz,
			Weight:    30,
			MaxPoints: 20,
			DueAt:     time.Now(),
			OwnerID:   "teacher-1",
		})
	})
	require.NoError(t, err)

	assignments, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
}

func TestWeightScopeRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	seedCourse(t, db, "c1", models.WeightModePerItem)

	rejected := errors.New("over budget")
	err := repo.WithWeightScope(context.Background(), "c1", func(scope WeightScope) error {
		require.NoError(t, scope.Save(&models.Assignment{
			ID: "a1", Title: "Essay", Category: models.CategoryHomework,
			Weight: 120, MaxPoints: 10, DueAt: time.Now(), OwnerID: "t",
		}))
		return rejected
	})
	require.ErrorIs(t, err, rejected)

	assignments, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestWeightScopeUnknownCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	err := repo.WithWeightScope(context.Background(), "nope", func(scope WeightScope) error {
		t.Fatal("scope must not open for a missing course")
		return nil
	})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWeightScopeSaveGrading(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	courses := NewCourseRepository(db)
	seedCourse(t, db, "c1", models.WeightModeCategory)
	ctx := context.Background()

	err := repo.WithWeightScope(ctx, "c1", func(scope WeightScope) error {
		course := scope.Course()
		course.WeightMode = models.WeightModePerItem
		course.WeightUnit = models.WeightUnitPercent
		return scope.SaveGrading(&course)
	})
	require.NoError(t, err)

	stored, err := courses.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, models.WeightModePerItem, stored.Mode())
	require.Equal(t, models.WeightUnitPercent, stored.WeightUnit)
	require.Equal(t, int64(2), stored.WeightRevision)

	// A rejected scope leaves the grading scheme untouched.
	rejected := errors.New("over budget")
	err = repo.WithWeightScope(ctx, "c1", func(scope WeightScope) error {
		course := scope.Course()
		course.WeightMode = models.WeightModeCategory
		require.NoError(t, scope.SaveGrading(&course))
		return rejected
	})
	require.ErrorIs(t, err, rejected)

	stored, err = courses.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, models.WeightModePerItem, stored.Mode())

	require.NoError(t, db.Model(&models.Course{}).Where("id = ?", "c1").Update("grading_finalized", true).Error)
	err = repo.WithWeightScope(ctx, "c1", func(scope WeightScope) error {
		course := scope.Course()
		course.GradingFinalized = false
		return scope.SaveGrading(&course)
	})
	require.ErrorIs(t, err, ErrConflict)
}
