package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/handler"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
)

type stubGrades struct {
	response dto.OverallGradeResponse
}

func (s stubGrades) OverallGrade(context.Context, string, string) (dto.OverallGradeResponse, error) {
	return s.response, nil
}

type stubIdentities struct{}

func (stubIdentities) Resolve(context.Context, string) *service.Identity {
	return nil
}

func TestOverallGradeContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "overall_grade.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	grades := stubGrades{response: dto.OverallGradeResponse{
		CourseID:       "c1",
		StudentKey:     "stu-1",
		Mode:           "per-item",
		Percentage:     82.5,
		SubmittedCount: 3,
		GradedCount:    2,
		PendingCount:   1,
	}}
	h := handler.NewGradeHandler(grades, nil, nil, stubIdentities{}, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/api/v2"))

	req := httptest.NewRequest(http.MethodGet, "/api/v2/courses/c1/students/stu-1/grade", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	app = fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "teacher-1")
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	h.Register(app.Group("/api/v2"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/courses/c1/students/stu-1/grade", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NoError(t, schema.Validate(payload))
}
