package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/app/service"
	"github.com/linkboard/linkboard/internal/models"
	"github.com/linkboard/linkboard/internal/storage"
)

type PostHandler struct {
	baseURL     string
	linkService service.LinkServiceIface
	logger      *zap.Logger
}

func NewPost(baseURL string, s service.LinkServiceIface, l *zap.Logger) *PostHandler {
	return &PostHandler{
		baseURL:     baseURL,
		linkService: s,
		logger:      l,
	}
}

// CreateLink handles POST /api/links.
func (h *PostHandler) CreateLink(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	var request models.CreateLinkRequest

	err := decodeJSONBody(res, req, &request)
	if err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			http.Error(res, mr.msg, mr.status)
		} else {
			h.logger.Error("cannot decode body", zap.Error(err))
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	var expiresAt *time.Time
	if request.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, request.ExpiresAt)
		if err != nil {
			http.Error(res, "expiresAt must be RFC3339 (e.g. 2026-01-08T12:00:00Z)", http.StatusBadRequest)
			return
		}
		expiresAt = &t
	}

	link, err := h.linkService.CreateLink(ctx, request.OriginalURL, request.CustomAlias, request.Title, request.Description, expiresAt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			http.Error(res, "originalUrl must be a valid absolute URL", http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidAlias):
			http.Error(res, "customAlias must be 3-32 characters, letters, digits, '-' or '_'", http.StatusBadRequest)
		case errors.Is(err, storage.ErrConflict):
			h.logger.Info("short code or alias already in use", zap.String("alias", request.CustomAlias))
			http.Error(res, "short code or alias already in use", http.StatusBadRequest)
		default:
			h.logger.Error("unable to create link", zap.Error(err))
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(res, models.NewLinkResponse(link, h.baseURL), http.StatusCreated)
}
