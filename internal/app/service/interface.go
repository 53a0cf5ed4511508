package service

import (
	"context"
	"time"

	"github.com/linkboard/linkboard/internal/storage"
)

// Storage is the persistence contract the link service needs. It is
// implemented by repository.LinkRepository, storage.MemoryStorage and
// storage.FileStorage.
type Storage interface {
	CreateLink(context.Context, storage.Link) (*storage.Link, error)
	FindByCode(context.Context, string) (*storage.Link, error)
	FindByID(context.Context, string) (*storage.Link, error)
	FindClicks(context.Context, string, int) ([]storage.Click, error)
	ListLinks(ctx context.Context, limit, offset int) ([]storage.Link, int64, error)
	RecordClick(context.Context, storage.Click) error
	Overview(context.Context) (*storage.OverviewStats, error)
	PingContext(context.Context) error
}

// LinkServiceIface is the handler-facing surface of the link service.
//
//go:generate mockgen -destination=../../mocks/mock_service.go -package=mocks github.com/linkboard/linkboard/internal/app/service LinkServiceIface,AuthIface
type LinkServiceIface interface {
	CreateLink(ctx context.Context, originalURL, customAlias, title, description string, expiresAt *time.Time) (*storage.Link, error)
	ResolveLink(ctx context.Context, code string) (*storage.Link, error)
	ListLinks(ctx context.Context, page, limit int) (*storage.LinkPage, error)
	GetLink(ctx context.Context, id string) (*storage.Link, []storage.Click, error)
	RecordClick(ctx context.Context, c storage.Click) error
	Overview(ctx context.Context) (*storage.OverviewStats, error)
	PingContext(ctx context.Context) error
}
