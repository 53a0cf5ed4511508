// Package models defines the request and response data structures used
// between clients and the link service HTTP API.
package models

import (
	"time"

	"github.com/linkboard/linkboard/internal/storage"
)

// CreateLinkRequest is the body of POST /api/links.
type CreateLinkRequest struct {
	// OriginalURL is the long URL to shorten. Scheme-less input gets an
	// https:// prefix before validation.
	OriginalURL string `json:"originalUrl"`

	// CustomAlias is an optional user-chosen identifier, minimum 3 characters.
	CustomAlias string `json:"customAlias,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// ExpiresAt is an optional RFC3339 expiry timestamp.
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// ClickResponse is one recorded visit, embedded in link details.
type ClickResponse struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Device    string    `json:"device,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LinkResponse is the API representation of a link.
type LinkResponse struct {
	ID          string          `json:"id"`
	OriginalURL string          `json:"originalUrl"`
	ShortCode   string          `json:"shortCode"`
	CustomAlias string          `json:"customAlias,omitempty"`
	ShortURL    string          `json:"shortUrl"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"isActive"`
	TotalClicks int64           `json:"totalClicks"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Clicks      []ClickResponse `json:"clicks,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ListLinksResponse is the body of GET /api/links.
type ListLinksResponse struct {
	Links      []LinkResponse `json:"links"`
	Pagination Pagination     `json:"pagination"`
}

// OverviewResponse is the body of GET /api/analytics/overview.
type OverviewResponse struct {
	TotalLinks     int64              `json:"totalLinks"`
	TotalClicks    int64              `json:"totalClicks"`
	RecentClicks   int64              `json:"recentClicks"`
	UniqueVisitors int64              `json:"uniqueVisitors"`
	TopLinks       []LinkResponse     `json:"topLinks"`
	ClicksOverTime []storage.DayCount `json:"clicksOverTime"`
}

// QRResponse is the body of GET /api/links/{id}/qr.
type QRResponse struct {
	QRCode string `json:"qrCode"`
}

// NewLinkResponse converts a stored link to its API shape. The short URL is
// assembled from the configured base URL and the link's redirect code.
func NewLinkResponse(l *storage.Link, baseURL string) LinkResponse {
	return LinkResponse{
		ID:          l.ID,
		OriginalURL: l.OriginalURL,
		ShortCode:   l.ShortCode,
		CustomAlias: l.CustomAlias,
		ShortURL:    baseURL + "/s/" + l.Code(),
		Title:       l.Title,
		Description: l.Description,
		IsActive:    l.IsActive,
		TotalClicks: l.TotalClicks,
		ExpiresAt:   l.ExpiresAt,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// NewClickResponse converts a stored click to its API shape.
func NewClickResponse(c storage.Click) ClickResponse {
	return ClickResponse{
		ID:        c.ID,
		IP:        c.IP,
		UserAgent: c.UserAgent,
		Referer:   c.Referer,
		Country:   c.Country,
		City:      c.City,
		Device:    c.Device,
		Browser:   c.Browser,
		OS:        c.OS,
		CreatedAt: c.CreatedAt,
	}
}
