package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"fakex/internal/config"
	"fakex/internal/middleware"
	"fakex/internal/models"
	"fakex/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubVerifier accepts the tokens it knows and rejects everything else.
type stubVerifier map[string]*middleware.Claims

func (v stubVerifier) Verify(_ context.Context, raw string) (*middleware.Claims, error) {
	claims, ok := v[raw]
	if !ok {
		return nil, middleware.ErrInvalidToken
	}
	return claims, nil
}

// claimsFor mirrors the subject and profile testutil.CreateUser uses for name.
func claimsFor(name string) *middleware.Claims {
	return &middleware.Claims{
		Subject: "auth0|" + name,
		Name:    name,
		Email:   name + "@example.com",
		Picture: "https://cdn.example.com/" + name + ".png",
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               "8080",
		Env:                "test",
		AllowedOrigins:     "*",
		RateLimitMax:       1000,
		FeedAnonymousLimit: 5,
		PostMaxLength:      280,
		CommentMaxLength:   280,
	}
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// newTestEnv builds the full app over an in-memory database. Each name gets the
// bearer token "<name>-token".
func newTestEnv(t *testing.T, names ...string) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	verifier := stubVerifier{}
	for _, name := range names {
		verifier[name+"-token"] = claimsFor(name)
	}

	srv, err := NewServerWithDeps(testConfig(), db, nil, verifier)
	require.NoError(t, err)
	return &testEnv{app: srv.NewApp(), db: db}
}

// do sends a request and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// doJSON is do followed by decoding the body into dst.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body, dst any) int {
	t.Helper()
	status, raw := e.do(t, method, path, token, body)
	require.NoError(t, json.Unmarshal(raw, dst), "body: %s", raw)
	return status
}

func decodeError(t *testing.T, raw []byte) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &resp), "body: %s", raw)
	return resp
}
