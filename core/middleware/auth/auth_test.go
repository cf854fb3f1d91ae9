package auth_test

import (
	"net/http/httptest"
	"testing"

	"calendar-sync/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: key, Skip: []string{"/healthz"}}))
	app.Get("/sync/last", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		path   string
		header string
		want   int
	}{
		{"ValidKey", "secret", "/sync/last", "secret", fiber.StatusOK},
		{"WrongKey", "secret", "/sync/last", "nope", fiber.StatusUnauthorized},
		{"MissingKey", "secret", "/sync/last", "", fiber.StatusUnauthorized},
		{"SkippedPath", "secret", "/healthz", "", fiber.StatusOK},
		{"AuthDisabled", "", "/sync/last", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(auth.Header, tt.header)
			}
			resp, err := newApp(tt.key).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
