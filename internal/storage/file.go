package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// journalEntry is one line of the append-only storage file.
type journalEntry struct {
	Kind  string `json:"kind"` // "link" or "click"
	Link  *Link  `json:"link,omitempty"`
	Click *Click `json:"click,omitempty"`
}

// FileStorage is a MemoryStorage that journals every write to a JSON-lines
// file and replays the journal on startup. Click counters are rebuilt from
// the replayed click entries, so the file never stores the denormalized
// counter itself.
type FileStorage struct {
	*MemoryStorage

	fileMu sync.Mutex
	file   *os.File
	logger *zap.Logger
}

func NewFileStorage(path string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0660)
	if err != nil {
		return nil, err
	}

	mem, err := CreateMemoryStorage()
	if err != nil {
		return nil, err
	}

	fs := &FileStorage{
		MemoryStorage: mem,
		file:          file,
		logger:        logger,
	}

	if err := fs.replay(); err != nil {
		file.Close()
		return nil, err
	}

	return fs, nil
}

func (fs *FileStorage) replay() error {
	scanner := bufio.NewScanner(fs.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ctx := context.Background()
	lines := 0
	for scanner.Scan() {
		lines++
		var entry journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return fmt.Errorf("failed to parse journal line %d: %w", lines, err)
		}

		switch {
		case entry.Kind == "link" && entry.Link != nil:
			// counters are rebuilt from click entries below
			entry.Link.TotalClicks = 0
			if _, err := fs.MemoryStorage.CreateLink(ctx, *entry.Link); err != nil {
				return fmt.Errorf("failed to replay link %s: %w", entry.Link.ID, err)
			}
		case entry.Kind == "click" && entry.Click != nil:
			if err := fs.MemoryStorage.RecordClick(ctx, *entry.Click); err != nil {
				return fmt.Errorf("failed to replay click %s: %w", entry.Click.ID, err)
			}
		default:
			return fmt.Errorf("unknown journal entry on line %d", lines)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading journal: %w", err)
	}

	fs.logger.Info("journal replayed", zap.Int("lines", lines))
	return nil
}

func (fs *FileStorage) appendEntry(entry journalEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	fs.fileMu.Lock()
	defer fs.fileMu.Unlock()
	_, err = fs.file.Write(append(b, '\n'))
	return err
}

func (fs *FileStorage) CreateLink(ctx context.Context, l Link) (*Link, error) {
	created, err := fs.MemoryStorage.CreateLink(ctx, l)
	if err != nil {
		return nil, err
	}

	if err := fs.appendEntry(journalEntry{Kind: "link", Link: created}); err != nil {
		return nil, err
	}
	return created, nil
}

func (fs *FileStorage) RecordClick(ctx context.Context, c Click) error {
	// assign identity here so the journaled entry matches what memory holds
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	if err := fs.MemoryStorage.RecordClick(ctx, c); err != nil {
		return err
	}
	return fs.appendEntry(journalEntry{Kind: "click", Click: &c})
}

func (fs *FileStorage) Close() error {
	return fs.file.Close()
}
