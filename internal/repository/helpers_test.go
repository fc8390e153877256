package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, id string, mode models.WeightMode) models.Course {
	t.Helper()
	course := models.Course{
		ID:              id,
		Title:           "Course " + id,
		OwnerID:         "teacher-1",
		WeightMode:      mode,
		CategoryWeights: datatypes.NewJSONType(models.CategoryWeights{}),
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func seedAssignment(t *testing.T, db *gorm.DB, courseID, id string, weight float64) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		ID:        id,
		CourseID:  courseID,
		Title:     "Assignment " + id,
		Category:  models.CategoryHomework,
		Weight:    weight,
		MaxPoints: 100,
		DueAt:     time.Now().Add(24 * time.Hour),
		OwnerID:   "teacher-1",
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}
