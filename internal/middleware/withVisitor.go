package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/linkboard/linkboard/internal/app/service"
)

// ContextKey is a custom type used for keys in the context.
type ContextKey string

// VisitorIDKey is the key under which the visitor id is stored in the
// request context.
const VisitorIDKey ContextKey = "visitorID"

// InjectVisitorID adds a visitor id to the request context. Used by tests.
func InjectVisitorID(req *http.Request, visitorID string) *http.Request {
	ctx := context.WithValue(req.Context(), VisitorIDKey, visitorID)
	return req.WithContext(ctx)
}

// WithVisitor reads the signed visitor cookie, issuing a new one when it is
// missing or invalid, and injects the visitor id into the request context.
// The redirect path stores this id on click rows so the overview can count
// unique visitors.
func WithVisitor(auth service.AuthIface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID := ""

			if cookie, err := r.Cookie("visitor"); err == nil {
				if claims, err := auth.ParseClaims(cookie); err == nil {
					visitorID = claims.VisitorID
				}
			}

			if visitorID == "" {
				tokenString, generatedID, err := auth.BuildJWTString()
				if err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     "visitor",
					Value:    tokenString,
					Expires:  time.Now().Add(service.TokenExp),
					HttpOnly: true,
					Path:     "/",
				})
				visitorID = generatedID
			}

			ctx := context.WithValue(r.Context(), VisitorIDKey, visitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
