package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// AuthIface builds and parses the signed visitor cookie used to count unique
// visitors in the analytics overview.
type AuthIface interface {
	BuildJWTString() (string, string, error)
	ParseClaims(c *http.Cookie) (*Claims, error)
}

// Claims are the JWT claims carried by the visitor cookie.
type Claims struct {
	jwt.RegisteredClaims
	VisitorID string `json:"visitor_id"`
}

// TokenExp defines the lifetime of the visitor token (1 year).
const TokenExp = time.Hour * 24 * 365

const secretKey = "supersecretkey"

// Auth issues and verifies anonymous visitor tokens.
type Auth struct{}

func NewAuth() *Auth {
	return &Auth{}
}

// BuildJWTString generates a fresh visitor id and wraps it in a signed JWT.
// It returns the token string and the visitor id.
func (a *Auth) BuildJWTString() (string, string, error) {
	visitorID := uuid.New().String()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
		},
		VisitorID: visitorID,
	})

	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", "", err
	}

	return tokenString, visitorID, nil
}

// ParseClaims verifies the visitor cookie and returns the claims it carries.
func (a *Auth) ParseClaims(c *http.Cookie) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid visitor token")
	}

	return claims, nil
}
