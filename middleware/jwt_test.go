package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, key []byte, header string) (int, string) {
	t.Helper()
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("username").(string))
	}, JWT(key))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func TestJWT(t *testing.T) {
	key := []byte("secret")
	valid, err := NewToken("race-officer", key, time.Now().Add(time.Hour))
	require.NoError(t, err)
	expired, err := NewToken("race-officer", key, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	forged, err := NewToken("race-officer", []byte("other"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", valid, http.StatusOK},
		{"bearer prefix", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusBadRequest},
		{"garbage", "not-a-token", http.StatusBadRequest},
		{"expired", expired, http.StatusUnauthorized},
		{"wrong key", forged, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, key, tt.header)
			assert.Equal(t, tt.status, code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "race-officer", body)
			}
		})
	}
}

func TestUserHashFromUsername(t *testing.T) {
	key := []byte("k")
	assert.Equal(t, UserHashFromUsername("Admin", key), UserHashFromUsername(" admin ", key))
	assert.NotEqual(t, UserHashFromUsername("admin", key), UserHashFromUsername("admin", []byte("x")))
}
