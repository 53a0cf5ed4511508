// Package repository implements the link store on top of PostgreSQL using
// database/sql with the pgx driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS links (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		original_url TEXT NOT NULL,
		short_code TEXT UNIQUE NOT NULL,
		custom_alias TEXT UNIQUE,
		title TEXT,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		total_clicks BIGINT NOT NULL DEFAULT 0,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS clicks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		link_id UUID NOT NULL REFERENCES links(id) ON DELETE CASCADE,
		ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		referer TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		device TEXT NOT NULL DEFAULT '',
		browser TEXT NOT NULL DEFAULT '',
		os TEXT NOT NULL DEFAULT '',
		visitor_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id);
	CREATE INDEX IF NOT EXISTS idx_clicks_created_at ON clicks(created_at);`

// InitDB opens the database, verifies the connection and makes sure the
// links and clicks tables exist.
func InitDB(ps string, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("pgx", ps)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	if _, err := db.Exec(schema); err != nil {
		logger.Fatal("cannot create tables", zap.Error(err))
	}

	return db
}

// LinkRepository stores links and clicks in PostgreSQL.
type LinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateLinkRepository(db *sql.DB, logger *zap.Logger) *LinkRepository {
	return &LinkRepository{
		db:     db,
		logger: logger,
	}
}

const linkColumns = `id, original_url, short_code, custom_alias, title, description, is_active, total_clicks, expires_at, created_at, updated_at`

func scanLink(row interface{ Scan(...any) error }) (*storage.Link, error) {
	var l storage.Link
	var alias, title, description sql.NullString
	var expiresAt sql.NullTime

	err := row.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &alias, &title, &description,
		&l.IsActive, &l.TotalClicks, &expiresAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}

	l.CustomAlias = alias.String
	l.Title = title.String
	l.Description = description.String
	if expiresAt.Valid {
		t := expiresAt.Time
		l.ExpiresAt = &t
	}
	return &l, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateLink inserts a new link. A unique violation on either the short code
// or the custom alias is reported as storage.ErrConflict.
func (r *LinkRepository) CreateLink(ctx context.Context, l storage.Link) (*storage.Link, error) {
	var expiresAt sql.NullTime
	if l.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *l.ExpiresAt, Valid: true}
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO links(original_url, short_code, custom_alias, title, description, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+linkColumns+`;`,
		l.OriginalURL, l.ShortCode, nullable(l.CustomAlias), nullable(l.Title), nullable(l.Description), expiresAt,
	)

	created, err := scanLink(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, storage.ErrConflict
		}
		r.logger.Error("insert link failed", zap.Error(err))
		return nil, err
	}

	return created, nil
}

// FindByCode returns the active link whose short code or custom alias equals
// the given code.
func (r *LinkRepository) FindByCode(ctx context.Context, code string) (*storage.Link, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links
		 WHERE (short_code = $1 OR custom_alias = $1) AND is_active = TRUE;`, code)

	l, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *LinkRepository) FindByID(ctx context.Context, id string) (*storage.Link, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE id = $1;`, id)

	l, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// FindClicks returns up to limit most recent clicks for the given link,
// newest first.
func (r *LinkRepository) FindClicks(ctx context.Context, linkID string, limit int) ([]storage.Click, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, link_id, ip, user_agent, referer, country, city, device, browser, os, visitor_id, created_at
		 FROM clicks WHERE link_id = $1 ORDER BY created_at DESC LIMIT $2;`, linkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := make([]storage.Click, 0)
	for rows.Next() {
		var c storage.Click
		err = rows.Scan(&c.ID, &c.LinkID, &c.IP, &c.UserAgent, &c.Referer,
			&c.Country, &c.City, &c.Device, &c.Browser, &c.OS, &c.VisitorID, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		clicks = append(clicks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clicks, nil
}

// ListLinks returns one page of links ordered by creation time descending,
// together with the total number of links.
func (r *LinkRepository) ListLinks(ctx context.Context, limit, offset int) ([]storage.Link, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links;`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links ORDER BY created_at DESC, id LIMIT $1 OFFSET $2;`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	links := make([]storage.Link, 0, limit)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, *l)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// RecordClick inserts the click row and increments the owning link's
// denormalized counter in a single transaction, so the counter cannot drift
// from the click rows under partial failure.
func (r *LinkRepository) RecordClick(ctx context.Context, c storage.Click) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO clicks(link_id, ip, user_agent, referer, visitor_id) VALUES ($1, $2, $3, $4, $5);`,
		c.LinkID, c.IP, c.UserAgent, c.Referer, c.VisitorID)
	if err != nil {
		tx.Rollback()
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE links SET total_clicks = total_clicks + 1 WHERE id = $1;`, c.LinkID)
	if err != nil {
		tx.Rollback()
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return storage.ErrNotFound
	}

	return tx.Commit()
}

// Overview recomputes the dashboard aggregate from the tables on every call.
func (r *LinkRepository) Overview(ctx context.Context) (*storage.OverviewStats, error) {
	stats := &storage.OverviewStats{}
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_clicks), 0) FROM links;`).
		Scan(&stats.TotalLinks, &stats.TotalClicks)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clicks WHERE created_at >= $1;`, weekAgo).
		Scan(&stats.RecentClicks)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT visitor_id) FROM clicks WHERE visitor_id <> '';`).
		Scan(&stats.UniqueVisitors)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links ORDER BY total_clicks DESC, id LIMIT 5;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		stats.TopLinks = append(stats.TopLinks, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := r.db.QueryContext(ctx,
		`SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		 FROM clicks WHERE created_at >= $1 GROUP BY day ORDER BY day;`, weekAgo)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var d storage.DayCount
		if err := dayRows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		stats.ClicksPerDay = append(stats.ClicksPerDay, d)
	}
	if err := dayRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *LinkRepository) PingContext(c context.Context) error {
	return r.db.PingContext(c)
}
