package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/app/service"
	"github.com/linkboard/linkboard/internal/middleware"
	"github.com/linkboard/linkboard/internal/models"
	"github.com/linkboard/linkboard/internal/storage"
)

type GetHandler struct {
	baseURL     string
	linkService service.LinkServiceIface
	qrService   service.QRService
	logger      *zap.Logger
}

func NewGet(baseURL string, s service.LinkServiceIface, qr service.QRService, l *zap.Logger) *GetHandler {
	return &GetHandler{
		baseURL:     baseURL,
		linkService: s,
		qrService:   qr,
		logger:      l,
	}
}

// Redirect handles GET /s/{code}: resolves the short code or alias, records
// one click and answers 302 to the original URL.
func (h *GetHandler) Redirect(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	code := chi.URLParam(req, "code")

	link, err := h.linkService.ResolveLink(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(res, "link not found", http.StatusNotFound)
		case errors.Is(err, service.ErrLinkExpired):
			http.Error(res, "link expired", http.StatusGone)
		default:
			h.logger.Error("cannot resolve link", zap.String("code", code), zap.Error(err))
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	click := storage.Click{
		LinkID:    link.ID,
		IP:        clientIP(req),
		UserAgent: req.UserAgent(),
		Referer:   req.Referer(),
	}
	if visitorID, ok := req.Context().Value(middleware.VisitorIDKey).(string); ok {
		click.VisitorID = visitorID
	}

	if err := h.linkService.RecordClick(ctx, click); err != nil {
		// the visitor still gets redirected
		h.logger.Error("cannot record click", zap.String("link_id", link.ID), zap.Error(err))
	}

	http.Redirect(res, req, link.OriginalURL, http.StatusFound)
}

// Links handles GET /api/links with page/limit query parameters.
func (h *GetHandler) Links(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	result, err := h.linkService.ListLinks(ctx, page, limit)
	if err != nil {
		h.logger.Error("cannot list links", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	links := make([]models.LinkResponse, 0, len(result.Links))
	for i := range result.Links {
		links = append(links, models.NewLinkResponse(&result.Links[i], h.baseURL))
	}

	pages := result.Total / int64(result.Limit)
	if result.Total%int64(result.Limit) != 0 {
		pages++
	}

	writeJSON(res, models.ListLinksResponse{
		Links: links,
		Pagination: models.Pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: pages,
		},
	}, http.StatusOK)
}

// LinkByID handles GET /api/links/{id}, embedding the most recent clicks.
func (h *GetHandler) LinkByID(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(req, "id")

	link, clicks, err := h.linkService.GetLink(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(res, "link not found", http.StatusNotFound)
			return
		}
		h.logger.Error("cannot get link", zap.String("id", id), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	response := models.NewLinkResponse(link, h.baseURL)
	response.Clicks = make([]models.ClickResponse, 0, len(clicks))
	for _, c := range clicks {
		response.Clicks = append(response.Clicks, models.NewClickResponse(c))
	}

	writeJSON(res, response, http.StatusOK)
}

// LinkQR handles GET /api/links/{id}/qr, answering the short URL encoded as
// a PNG data URI.
func (h *GetHandler) LinkQR(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(req, "id")

	link, _, err := h.linkService.GetLink(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(res, "link not found", http.StatusNotFound)
			return
		}
		h.logger.Error("cannot get link", zap.String("id", id), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	qr, err := h.qrService.MakeBase64(h.baseURL+"/s/"+link.Code(), 256)
	if err != nil {
		h.logger.Error("cannot generate qr", zap.String("id", id), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(res, models.QRResponse{QRCode: qr}, http.StatusOK)
}

// Overview handles GET /api/analytics/overview.
func (h *GetHandler) Overview(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	stats, err := h.linkService.Overview(ctx)
	if err != nil {
		h.logger.Error("cannot compute overview", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	topLinks := make([]models.LinkResponse, 0, len(stats.TopLinks))
	for i := range stats.TopLinks {
		topLinks = append(topLinks, models.NewLinkResponse(&stats.TopLinks[i], h.baseURL))
	}

	clicksOverTime := stats.ClicksPerDay
	if clicksOverTime == nil {
		clicksOverTime = make([]storage.DayCount, 0)
	}

	writeJSON(res, models.OverviewResponse{
		TotalLinks:     stats.TotalLinks,
		TotalClicks:    stats.TotalClicks,
		RecentClicks:   stats.RecentClicks,
		UniqueVisitors: stats.UniqueVisitors,
		TopLinks:       topLinks,
		ClicksOverTime: clicksOverTime,
	}, http.StatusOK)
}

// PingDB handles GET /ping.
func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	if err := h.linkService.PingContext(ctx); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}
