package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/geo_forum/internal/tokens"
)

func newTokenService(t *testing.T) *tokens.Service {
	t.Helper()

	ts, err := tokens.New(tokens.Config{
		Secret:   []byte("middleware-test-secret-middleware-test"),
		Issuer:   "geo_forum",
		Audience: "geo_forum_clients",
	})
	require.NoError(t, err)
	return ts
}

func TestBearer(t *testing.T) {
	t.Parallel()

	ts := newTokenService(t)
	access, err := ts.CreateAccessToken("alice", "user-1", []string{"ForumUser"})
	require.NoError(t, err)
	refresh, err := ts.CreateRefreshToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + access, want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + access, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + refresh, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			var seen string
			e.GET("/private", func(c echo.Context) error {
				seen = Identity(c).Subject
				return c.NoContent(http.StatusOK)
			}, Bearer(ts))

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "user-1", seen)
			}
		})
	}
}

func TestIdentity_Absent(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, Identity(c))
}
