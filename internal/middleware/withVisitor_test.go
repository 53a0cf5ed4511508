package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkboard/linkboard/internal/app/service"
)

func TestWithVisitorIssuesCookie(t *testing.T) {
	auth := service.NewAuth()

	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(VisitorIDKey).(string)
		require.True(t, ok)
		seenID = id
	})

	req := httptest.NewRequest(http.MethodGet, "/s/abc", nil)
	rec := httptest.NewRecorder()
	WithVisitor(auth)(handler).ServeHTTP(rec, req)

	assert.NotEmpty(t, seenID)

	resp := rec.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "visitor", cookies[0].Name)

	claims, err := auth.ParseClaims(cookies[0])
	require.NoError(t, err)
	assert.Equal(t, seenID, claims.VisitorID)
}

func TestWithVisitorKeepsExistingCookie(t *testing.T) {
	auth := service.NewAuth()
	token, visitorID, err := auth.BuildJWTString()
	require.NoError(t, err)

	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(VisitorIDKey).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/s/abc", nil)
	req.AddCookie(&http.Cookie{Name: "visitor", Value: token})
	rec := httptest.NewRecorder()
	WithVisitor(auth)(handler).ServeHTTP(rec, req)

	assert.Equal(t, visitorID, seenID)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie should be set")
}

func TestWithVisitorReplacesInvalidCookie(t *testing.T) {
	auth := service.NewAuth()

	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(VisitorIDKey).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/s/abc", nil)
	req.AddCookie(&http.Cookie{Name: "visitor", Value: "garbage"})
	rec := httptest.NewRecorder()
	WithVisitor(auth)(handler).ServeHTTP(rec, req)

	assert.NotEmpty(t, seenID)
	require.Len(t, rec.Result().Cookies(), 1)
}
