package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps links and clicks in process memory. It is used when no
// database DSN is configured and as the backend for service tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	links  []*Link // insertion order == creation order
	byID   map[string]*Link
	clicks map[string][]Click // link id -> clicks, newest last
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		byID:   make(map[string]*Link),
		clicks: make(map[string][]Click),
	}, nil
}

func (m *MemoryStorage) CreateLink(_ context.Context, l Link) (*Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.links {
		if existing.ShortCode == l.ShortCode {
			return nil, ErrConflict
		}
		if l.CustomAlias != "" && existing.CustomAlias == l.CustomAlias {
			return nil, ErrConflict
		}
	}

	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = l.CreatedAt

	stored := l
	m.links = append(m.links, &stored)
	m.byID[stored.ID] = &stored

	result := stored
	return &result, nil
}

func (m *MemoryStorage) FindByCode(_ context.Context, code string) (*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.links {
		if !l.IsActive {
			continue
		}
		if l.ShortCode == code || (l.CustomAlias != "" && l.CustomAlias == code) {
			result := *l
			return &result, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) FindByID(_ context.Context, id string) (*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *l
	return &result, nil
}

func (m *MemoryStorage) FindClicks(_ context.Context, linkID string, limit int) ([]Click, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.byID[linkID]; !ok {
		return nil, ErrNotFound
	}

	all := m.clicks[linkID]
	result := make([]Click, 0, limit)
	for i := len(all) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, all[i])
	}
	return result, nil
}

func (m *MemoryStorage) ListLinks(_ context.Context, limit, offset int) ([]Link, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := int64(len(m.links))

	result := make([]Link, 0, limit)
	for i := len(m.links) - 1 - offset; i >= 0 && len(result) < limit; i-- {
		result = append(result, *m.links[i])
	}
	return result, total, nil
}

func (m *MemoryStorage) RecordClick(_ context.Context, c Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.byID[c.LinkID]
	if !ok {
		return ErrNotFound
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	m.clicks[c.LinkID] = append(m.clicks[c.LinkID], c)
	l.TotalClicks++
	return nil
}

func (m *MemoryStorage) Overview(_ context.Context) (*OverviewStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &OverviewStats{TotalLinks: int64(len(m.links))}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	visitors := make(map[string]struct{})
	perDay := make(map[string]int64)

	for _, l := range m.links {
		stats.TotalClicks += l.TotalClicks
	}

	for _, cs := range m.clicks {
		for _, c := range cs {
			if c.VisitorID != "" {
				visitors[c.VisitorID] = struct{}{}
			}
			if c.CreatedAt.After(weekAgo) {
				stats.RecentClicks++
				perDay[c.CreatedAt.Format("2006-01-02")]++
			}
		}
	}
	stats.UniqueVisitors = int64(len(visitors))

	top := make([]Link, 0, len(m.links))
	for _, l := range m.links {
		top = append(top, *l)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].TotalClicks != top[j].TotalClicks {
			return top[i].TotalClicks > top[j].TotalClicks
		}
		return top[i].ID < top[j].ID
	})
	if len(top) > 5 {
		top = top[:5]
	}
	stats.TopLinks = top

	days := make([]string, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		stats.ClicksPerDay = append(stats.ClicksPerDay, DayCount{Date: d, Count: perDay[d]})
	}

	return stats, nil
}

func (m *MemoryStorage) PingContext(_ context.Context) error {
	return errors.ErrUnsupported
}
