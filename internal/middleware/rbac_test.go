package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func withIdentity(subject, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if subject != "" {
			c.Locals(LocalUserID, subject)
		}
		c.Locals(LocalUserRole, role)
		return c.Next()
	}
}

func status(t *testing.T, app *fiber.App, method, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withIdentity("t1", "teacher"))
	app.Use(RequireRole("admin", "Teacher"))
	app.Get("/grading", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	require.Equal(t, fiber.StatusOK, status(t, app, http.MethodGet, "/grading"))
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withIdentity("s1", "student"))
	app.Use(RequireRole("admin", "teacher"))
	app.Get("/grading", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	require.Equal(t, fiber.StatusForbidden, status(t, app, http.MethodGet, "/grading"))
}

type staticPolicy map[string]bool

func (p staticPolicy) IsAdmin(ctx context.Context, subjectID string) bool {
	return p[subjectID]
}

func TestRequireAdminUsesPolicy(t *testing.T) {
	policy := staticPolicy{"root": true}
	cases := []struct {
		subject string
		role    string
		want    int
	}{
		{subject: "root", role: "teacher", want: fiber.StatusOK},
		{subject: "mallory", role: "admin", want: fiber.StatusForbidden},
		{subject: "", role: "admin", want: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Use(withIdentity(tc.subject, tc.role))
		app.Get("/identities/x", RequireAdmin(policy), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		require.Equal(t, tc.want, status(t, app, http.MethodGet, "/identities/x"), tc.subject)
	}
}
