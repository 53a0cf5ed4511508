package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndParseVisitorToken(t *testing.T) {
	auth := NewAuth()

	tokenString, visitorID, err := auth.BuildJWTString()
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.NotEmpty(t, visitorID)

	claims, err := auth.ParseClaims(&http.Cookie{Name: "visitor", Value: tokenString})
	require.NoError(t, err)
	assert.Equal(t, visitorID, claims.VisitorID)
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	auth := NewAuth()

	_, err := auth.ParseClaims(&http.Cookie{Name: "visitor", Value: "not-a-token"})
	assert.Error(t, err)
}

func TestVisitorIDsAreUnique(t *testing.T) {
	auth := NewAuth()

	_, first, err := auth.BuildJWTString()
	require.NoError(t, err)
	_, second, err := auth.BuildJWTString()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
