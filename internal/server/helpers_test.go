package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"requestId", "request ID"},
		{"interestId", "interest ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parsePagination ---

func TestParsePagination_Defaults(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, float64(25), body["limit"])
	assert.Equal(t, float64(0), body["offset"])
}

func TestParsePagination_Custom(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	req := httptest.NewRequest(http.MethodGet, "/items?limit=10&offset=30", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, float64(10), body["limit"])
	assert.Equal(t, float64(30), body["offset"])
}

func TestParsePagination_ClampsOversizedLimit(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	req := httptest.NewRequest(http.MethodGet, "/items?limit=5000&offset=-3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, float64(maxPaginationLimit), body["limit"])
	assert.Equal(t, float64(0), body["offset"])
}

// --- parseID ---

func TestParseID_ValidID(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseID_InvalidNonNumeric(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		_, _ = s.parseID(c, "id")
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/items/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "Invalid ID")
}

func TestParseID_ContextSpecificErrorMessage(t *testing.T) {
	tests := []struct {
		param       string
		expectedMsg string
	}{
		{"id", "Invalid ID"},
		{"userId", "Invalid user ID"},
		{"interestId", "Invalid interest ID"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			app := fiber.New()
			s := &Server{}
			app.Get("/items/:"+tt.param, func(c *fiber.Ctx) error {
				_, _ = s.parseID(c, tt.param)
				return nil
			})

			req := httptest.NewRequest(http.MethodGet, "/items/abc", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedMsg, body["error"])
		})
	}
}

func TestParseID_ZeroRejected(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/items/0", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// No row ever has id 0; treat it as malformed input.
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
