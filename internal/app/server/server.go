// Package server assembles the chi router for the link service.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/app/handler"
	"github.com/linkboard/linkboard/internal/app/service"
	"github.com/linkboard/linkboard/internal/middleware"
)

// Init builds the router: the JSON API under /api, the redirect path under
// /s and the health check. When trustedSubnet is non-empty the analytics
// overview is restricted to that CIDR.
func Init(baseURL string, log *zap.Logger, withGzip bool, linkService service.LinkServiceIface, auth service.AuthIface, trustedSubnet string) *chi.Mux {
	post := handler.NewPost(baseURL, linkService, log)
	get := handler.NewGet(baseURL, linkService, service.QRService{}, log)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(log))
	r.Use(middleware.WithVisitor(auth))

	r.Route("/api", func(api chi.Router) {
		if withGzip {
			api.Use(middleware.WithGZIPGet, middleware.WithGZIPPost)
		}

		api.Post("/links", post.CreateLink)
		api.Get("/links", get.Links)
		api.Get("/links/{id}", get.LinkByID)
		api.Get("/links/{id}/qr", get.LinkQR)

		if trustedSubnet != "" {
			api.With(middleware.WithSubnet(trustedSubnet)).Get("/analytics/overview", get.Overview)
		} else {
			api.Get("/analytics/overview", get.Overview)
		}
	})

	r.Get("/s/{code}", get.Redirect)
	r.Get("/ping", get.PingDB)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
