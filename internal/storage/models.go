package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no link matches the given code or id.
var ErrNotFound = errors.New("link not found")

// ErrConflict is returned when a short code or custom alias is already taken.
var ErrConflict = errors.New("data conflict")

// Link is a stored short link record.
type Link struct {
	ID          string     `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	TotalClicks int64      `json:"total_clicks"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Code returns the identifier used in the redirect path: the custom alias
// when one was chosen, the generated short code otherwise.
func (l *Link) Code() string {
	if l.CustomAlias != "" {
		return l.CustomAlias
	}
	return l.ShortCode
}

// Click is one recorded visit through the redirect path. The geo and device
// fields exist in the schema for an external enrichment step and are never
// populated by the redirect flow itself.
type Click struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"link_id"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Device    string    `json:"device,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	VisitorID string    `json:"visitor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkPage is one page of links plus the data needed for pagination.
type LinkPage struct {
	Links []Link
	Total int64
	Page  int
	Limit int
}

// DayCount is the number of clicks recorded on one calendar day.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// OverviewStats is the dashboard aggregate, recomputed from the store on
// every call.
type OverviewStats struct {
	TotalLinks     int64
	TotalClicks    int64
	RecentClicks   int64
	UniqueVisitors int64
	TopLinks       []Link
	ClicksPerDay   []DayCount
}
