package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/app/service"
	"github.com/linkboard/linkboard/internal/middleware"
	"github.com/linkboard/linkboard/internal/mocks"
	"github.com/linkboard/linkboard/internal/models"
	"github.com/linkboard/linkboard/internal/storage"
)

func newTestGetHandler(t *testing.T) (*GetHandler, *mocks.MockLinkServiceIface) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockLinkServiceIface(ctrl)

	h := NewGet("http://localhost:8080", mockService, service.QRService{}, zap.NewNop())
	return h, mockService
}

// withURLParam injects a chi route parameter into the request context.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRedirect(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	link := &storage.Link{ID: "id-1", OriginalURL: "https://example.com", ShortCode: "abc123xy", IsActive: true}

	mockService.EXPECT().
		ResolveLink(gomock.Any(), "abc123xy").
		Return(link, nil).
		Times(1)
	mockService.EXPECT().
		RecordClick(gomock.Any(), storage.Click{
			LinkID:    "id-1",
			IP:        "192.0.2.1",
			UserAgent: "test-agent",
			Referer:   "https://ref.example",
			VisitorID: "v-1",
		}).
		Return(nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/s/abc123xy", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Referer", "https://ref.example")
	req = middleware.InjectVisitorID(req, "v-1")
	req = withURLParam(req, "code", "abc123xy")
	rr := httptest.NewRecorder()

	h.Redirect(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://example.com", rr.Header().Get("Location"))
}

func TestRedirectNotFound(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	mockService.EXPECT().
		ResolveLink(gomock.Any(), "missing").
		Return(nil, storage.ErrNotFound).
		Times(1)
	mockService.EXPECT().RecordClick(gomock.Any(), gomock.Any()).Times(0)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/s/missing", nil), "code", "missing")
	rr := httptest.NewRecorder()

	h.Redirect(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRedirectExpired(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	mockService.EXPECT().
		ResolveLink(gomock.Any(), "expired1").
		Return(nil, service.ErrLinkExpired).
		Times(1)
	mockService.EXPECT().RecordClick(gomock.Any(), gomock.Any()).Times(0)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/s/expired1", nil), "code", "expired1")
	rr := httptest.NewRecorder()

	h.Redirect(rr, req)

	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestRedirectSucceedsWhenClickRecordingFails(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	link := &storage.Link{ID: "id-1", OriginalURL: "https://example.com", ShortCode: "abc123xy", IsActive: true}

	mockService.EXPECT().ResolveLink(gomock.Any(), "abc123xy").Return(link, nil).Times(1)
	mockService.EXPECT().RecordClick(gomock.Any(), gomock.Any()).Return(assert.AnError).Times(1)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/s/abc123xy", nil), "code", "abc123xy")
	rr := httptest.NewRecorder()

	h.Redirect(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestLinks(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	mockService.EXPECT().
		ListLinks(gomock.Any(), 2, 5).
		Return(&storage.LinkPage{
			Links: []storage.Link{
				{ID: "id-1", ShortCode: "abc123xy", TotalClicks: 3, IsActive: true},
			},
			Total: 11,
			Page:  2,
			Limit: 5,
		}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/links?page=2&limit=5", nil)
	rr := httptest.NewRecorder()

	h.Links(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response models.ListLinksResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Len(t, response.Links, 1)
	assert.Equal(t, "http://localhost:8080/s/abc123xy", response.Links[0].ShortURL)
	assert.Equal(t, 2, response.Pagination.Page)
	assert.Equal(t, 5, response.Pagination.Limit)
	assert.Equal(t, int64(11), response.Pagination.Total)
	assert.Equal(t, int64(3), response.Pagination.Pages)
}

func TestLinksWithoutQueryParams(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	// missing query params arrive as zero and the service applies defaults
	mockService.EXPECT().
		ListLinks(gomock.Any(), 0, 0).
		Return(&storage.LinkPage{Links: []storage.Link{}, Total: 0, Page: 1, Limit: 10}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	rr := httptest.NewRecorder()

	h.Links(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response models.ListLinksResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Pagination.Page)
	assert.Equal(t, int64(0), response.Pagination.Pages)
}

func TestLinkByID(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	link := &storage.Link{ID: "id-1", OriginalURL: "https://example.com", ShortCode: "abc123xy", TotalClicks: 2, IsActive: true}
	clicks := []storage.Click{
		{ID: "c-2", LinkID: "id-1", IP: "10.0.0.2", CreatedAt: time.Now()},
		{ID: "c-1", LinkID: "id-1", IP: "10.0.0.1", CreatedAt: time.Now().Add(-time.Minute)},
	}

	mockService.EXPECT().
		GetLink(gomock.Any(), "id-1").
		Return(link, clicks, nil).
		Times(1)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/links/id-1", nil), "id", "id-1")
	rr := httptest.NewRecorder()

	h.LinkByID(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response models.LinkResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "id-1", response.ID)
	require.Len(t, response.Clicks, 2)
	assert.Equal(t, "c-2", response.Clicks[0].ID)
}

func TestLinkByIDNotFound(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	mockService.EXPECT().
		GetLink(gomock.Any(), "missing").
		Return(nil, nil, storage.ErrNotFound).
		Times(1)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/links/missing", nil), "id", "missing")
	rr := httptest.NewRecorder()

	h.LinkByID(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLinkQR(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	link := &storage.Link{ID: "id-1", ShortCode: "abc123xy", CustomAlias: "my-alias", IsActive: true}

	mockService.EXPECT().
		GetLink(gomock.Any(), "id-1").
		Return(link, nil, nil).
		Times(1)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/links/id-1/qr", nil), "id", "id-1")
	rr := httptest.NewRecorder()

	h.LinkQR(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response models.QRResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Contains(t, response.QRCode, "data:image/png;base64,")
}

func TestOverview(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	mockService.EXPECT().
		Overview(gomock.Any()).
		Return(&storage.OverviewStats{
			TotalLinks:     3,
			TotalClicks:    10,
			RecentClicks:   4,
			UniqueVisitors: 2,
			TopLinks:       []storage.Link{{ID: "id-1", ShortCode: "toplink1", TotalClicks: 8, IsActive: true}},
			ClicksPerDay: []storage.DayCount{
				{Date: "2026-08-30", Count: 1},
				{Date: "2026-08-31", Count: 3},
			},
		}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/overview", nil)
	rr := httptest.NewRecorder()

	h.Overview(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response models.OverviewResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, int64(3), response.TotalLinks)
	assert.Equal(t, int64(10), response.TotalClicks)
	assert.Equal(t, int64(4), response.RecentClicks)
	assert.Equal(t, int64(2), response.UniqueVisitors)
	require.Len(t, response.TopLinks, 1)
	require.Len(t, response.ClicksOverTime, 2)
	assert.Equal(t, "2026-08-30", response.ClicksOverTime[0].Date)
}

func TestPingDB(t *testing.T) {
	h, mockService := newTestGetHandler(t)

	mockService.EXPECT().PingContext(gomock.Any()).Return(nil).Times(1)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()

	h.PingDB(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
