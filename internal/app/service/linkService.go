package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/storage"
)

// ErrInvalidURL is returned when the submitted URL does not parse as an
// absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid original url")

// ErrInvalidAlias is returned when a custom alias is too short or contains
// characters outside the allowed set.
var ErrInvalidAlias = errors.New("invalid custom alias")

// ErrLinkExpired is returned when a link matches the code but its expiry
// timestamp is in the past. It is distinct from storage.ErrNotFound so the
// HTTP boundary can answer 410 instead of 404.
var ErrLinkExpired = errors.New("link expired")

const (
	defaultPage     = 1
	defaultPageSize = 10
	recentClicksCap = 100
)

// LinkService implements link creation and resolution, click recording and
// the analytics overview.
type LinkService struct {
	repository Storage
	generator  *CodeGenerator
	logger     *zap.Logger
	baseURL    string
}

func NewLink(repo Storage, generator *CodeGenerator, logger *zap.Logger, baseURL string) *LinkService {
	return &LinkService{
		repository: repo,
		generator:  generator,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// normalizeURL validates that raw is an absolute http(s) URL, prefixing
// scheme-less input with https://.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	return raw, nil
}

// CreateLink validates the input, generates a short code and persists the new
// link. The generated code is not checked for uniqueness up front; the store's
// unique constraint reports a collision as storage.ErrConflict, as does a
// custom alias that is already taken.
func (s *LinkService) CreateLink(ctx context.Context, originalURL, customAlias, title, description string, expiresAt *time.Time) (*storage.Link, error) {
	normalized, err := normalizeURL(originalURL)
	if err != nil {
		return nil, err
	}

	customAlias = strings.TrimSpace(customAlias)
	if customAlias != "" && !IsValidAlias(customAlias) {
		return nil, ErrInvalidAlias
	}

	code, err := s.generator.Generate()
	if err != nil {
		return nil, err
	}

	link := storage.Link{
		OriginalURL: normalized,
		ShortCode:   code,
		CustomAlias: customAlias,
		Title:       title,
		Description: description,
		IsActive:    true,
		ExpiresAt:   expiresAt,
	}

	created, err := s.repository.CreateLink(ctx, link)
	if err != nil {
		return nil, err
	}

	s.logger.Info("link created",
		zap.String("id", created.ID),
		zap.String("short_code", created.ShortCode))

	return created, nil
}

// ResolveLink finds the active link whose short code or custom alias equals
// code. A link past its expiry is reported as ErrLinkExpired.
func (s *LinkService) ResolveLink(ctx context.Context, code string) (*storage.Link, error) {
	link, err := s.repository.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.ExpiresAt != nil && time.Now().UTC().After(*link.ExpiresAt) {
		return nil, ErrLinkExpired
	}

	return link, nil
}

// ListLinks returns one page of links ordered by creation time descending.
// Non-positive page or limit fall back to 1 and 10.
func (s *LinkService) ListLinks(ctx context.Context, page, limit int) (*storage.LinkPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	links, total, err := s.repository.ListLinks(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &storage.LinkPage{
		Links: links,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// GetLink returns the link with the given id along with its most recent
// clicks, capped at 100, newest first.
func (s *LinkService) GetLink(ctx context.Context, id string) (*storage.Link, []storage.Click, error) {
	link, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	clicks, err := s.repository.FindClicks(ctx, id, recentClicksCap)
	if err != nil {
		return nil, nil, err
	}

	return link, clicks, nil
}

// RecordClick appends a click event and increments the owning link's counter.
func (s *LinkService) RecordClick(ctx context.Context, c storage.Click) error {
	return s.repository.RecordClick(ctx, c)
}

// Overview recomputes the dashboard aggregate from the store.
func (s *LinkService) Overview(ctx context.Context) (*storage.OverviewStats, error) {
	return s.repository.Overview(ctx)
}

func (s *LinkService) PingContext(ctx context.Context) error {
	return s.repository.PingContext(ctx)
}
