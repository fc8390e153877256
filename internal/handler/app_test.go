package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/config"
	"github.com/noah-isme/gema-gradebook-api/internal/handler"
	"github.com/noah-isme/gema-gradebook-api/internal/middleware"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
	"github.com/noah-isme/gema-gradebook-api/internal/router"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

// envelope mirrors utils.APIResponse with a raw payload.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

// setupApp wires every handler on sqlite. Callers pick their identity with the
// X-Test-User and X-Test-Role headers.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	identities := service.NewIdentityResolver(userRepo, logger)
	ledger := service.NewWeightLedger(courseRepo, assignmentRepo, logger)
	activity := service.NewActivityService(activityRepo, logger)
	cache := service.NewGradeCache(nil, time.Minute, logger)
	grades := service.NewGradeAggregator(courseRepo, assignmentRepo, submissionRepo, identities, cache, config.EmptyCategoryExclude, logger)
	attendance := service.NewAttendanceAggregator(attendanceRepo, identities, logger)
	summaries := service.NewStudentSummaryService(enrollmentRepo, identities, grades, attendance, logger)
	controller := service.NewGradingModeController(courseRepo, assignmentRepo, validate, activity, nil, cache, logger)
	assignments := service.NewAssignmentService(assignmentRepo, ledger, validate, activity, cache, logger)
	submissions := service.NewSubmissionService(submissionRepo, assignmentRepo, identities, validate, cache, logger)
	gradingService := service.NewGradingService(submissionRepo, assignmentRepo, identities, validate, activity, cache, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, courseRepo, identities, validate, logger)
	courses := service.NewCourseService(courseRepo, validate, activity, logger)
	policy := service.NewAuthorizationPolicy([]string{"root-admin"}, identities)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		GradeHandler:      handler.NewGradeHandler(grades, attendance, summaries, identities, logger),
		WeightHandler:     handler.NewWeightHandler(ledger, validate, logger),
		GradingHandler:    handler.NewGradingHandler(controller, activity, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignments, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissions, gradingService, identities, logger),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, logger),
		CourseHandler:     handler.NewCourseHandler(courses, logger),
		IdentityHandler:   handler.NewIdentityHandler(identities),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals(middleware.LocalUserID, c.Get("X-Test-User"))
			c.Locals(middleware.LocalUserRole, c.Get("X-Test-Role"))
			return c.Next()
		},
		Guards: handler.Guards{
			Staff: middleware.RequireRole("teacher", "admin"),
			Admin: middleware.RequireAdmin(policy),
		},
	})

	return &testApp{app: app, db: db}
}

func (a *testApp) do(t *testing.T, method, path, user, role string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", user)
	req.Header.Set("X-Test-Role", role)

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (a *testApp) seedCourse(t *testing.T, id string) {
	t.Helper()
	course := models.Course{
		ID:              id,
		Title:           "Course " + id,
		OwnerID:         "teacher-1",
		WeightMode:      models.WeightModePerItem,
		CategoryWeights: datatypes.NewJSONType(models.CategoryWeights{}),
	}
	require.NoError(t, a.db.Create(&course).Error)
}

func (a *testApp) seedAssignment(t *testing.T, courseID, id string, weight, maxPoints float64) {
	t.Helper()
	assignment := models.Assignment{
		ID:        id,
		CourseID:  courseID,
		Title:     "Assignment " + id,
		Category:  models.CategoryHomework,
		Weight:    weight,
		MaxPoints: maxPoints,
		DueAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		OwnerID:   "teacher-1",
	}
	require.NoError(t, a.db.Create(&assignment).Error)
}

func decode(t *testing.T, raw json.RawMessage, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, target))
}
