package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/storage"
)

var linkCols = []string{"id", "original_url", "short_code", "custom_alias", "title", "description", "is_active", "total_clicks", "expires_at", "created_at", "updated_at"}

// Helper to set up a mock DB and repository
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *LinkRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := CreateLinkRepository(db, zap.NewNop())
	return db, mock, repo
}

func linkRow(id, code, alias string, totalClicks int64) *sqlmock.Rows {
	now := time.Now()
	var aliasVal interface{}
	if alias != "" {
		aliasVal = alias
	}
	return sqlmock.NewRows(linkCols).
		AddRow(id, "https://example.com", code, aliasVal, nil, nil, true, totalClicks, nil, now, now)
}

func TestCreateLink(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO links`).
		WithArgs("https://example.com", "abc123xy", sql.NullString{}, sql.NullString{}, sql.NullString{}, sql.NullTime{}).
		WillReturnRows(linkRow("id-1", "abc123xy", "", 0))

	result, err := repo.CreateLink(context.Background(), storage.Link{
		OriginalURL: "https://example.com",
		ShortCode:   "abc123xy",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "id-1", result.ID)
	assert.Equal(t, "abc123xy", result.ShortCode)
	assert.True(t, result.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCode(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM links`).
		WithArgs("my-alias").
		WillReturnRows(linkRow("id-1", "abc123xy", "my-alias", 7))

	result, err := repo.FindByCode(context.Background(), "my-alias")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "my-alias", result.CustomAlias)
	assert.Equal(t, int64(7), result.TotalClicks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCodeNotFound(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM links`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClick(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO clicks`).
		WithArgs("id-1", "10.0.0.1", "agent", "https://ref.example", "v1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE links SET total_clicks = total_clicks \+ 1`).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordClick(context.Background(), storage.Click{
		LinkID:    "id-1",
		IP:        "10.0.0.1",
		UserAgent: "agent",
		Referer:   "https://ref.example",
		VisitorID: "v1",
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClickMissingLinkRollsBack(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO clicks`).
		WithArgs("unknown", "", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE links SET total_clicks = total_clicks \+ 1`).
		WithArgs("unknown").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RecordClick(context.Background(), storage.Click{LinkID: "unknown"})

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLinks(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM links`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	now := time.Now()
	rows := sqlmock.NewRows(linkCols).
		AddRow("id-2", "https://b.com", "second22", nil, nil, nil, true, int64(3), nil, now, now).
		AddRow("id-1", "https://a.com", "first111", nil, nil, nil, true, int64(1), nil, now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT (.+) FROM links ORDER BY created_at DESC`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	links, total, err := repo.ListLinks(context.Background(), 10, 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, links, 2)
	assert.Equal(t, "second22", links[0].ShortCode)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindClicks(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "link_id", "ip", "user_agent", "referer", "country", "city", "device", "browser", "os", "visitor_id", "created_at"}).
		AddRow("c-2", "id-1", "10.0.0.2", "", "", "", "", "", "", "", "v2", now).
		AddRow("c-1", "id-1", "10.0.0.1", "", "", "", "", "", "", "", "v1", now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT (.+) FROM clicks WHERE link_id`).
		WithArgs("id-1", 100).
		WillReturnRows(rows)

	clicks, err := repo.FindClicks(context.Background(), "id-1", 100)

	assert.NoError(t, err)
	require.Len(t, clicks, 2)
	assert.Equal(t, "10.0.0.2", clicks[0].IP)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverview(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(total_clicks\), 0\) FROM links`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(4, 25))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clicks WHERE created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT visitor_id\) FROM clicks`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT (.+) FROM links ORDER BY total_clicks DESC`).
		WillReturnRows(linkRow("id-1", "toplink1", "", 20))
	mock.ExpectQuery(`SELECT to_char`).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2026-08-30", 4).
			AddRow("2026-08-31", 5))

	stats, err := repo.Overview(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalLinks)
	assert.Equal(t, int64(25), stats.TotalClicks)
	assert.Equal(t, int64(9), stats.RecentClicks)
	assert.Equal(t, int64(5), stats.UniqueVisitors)
	require.Len(t, stats.TopLinks, 1)
	assert.Equal(t, "toplink1", stats.TopLinks[0].ShortCode)
	require.Len(t, stats.ClicksPerDay, 2)
	assert.Equal(t, "2026-08-30", stats.ClicksPerDay[0].Date)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLinkConflict(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO links`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.CreateLink(context.Background(), storage.Link{OriginalURL: "https://a.com", ShortCode: "taken123"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLinkUnexpectedError(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO links`).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.CreateLink(context.Background(), storage.Link{OriginalURL: "https://a.com", ShortCode: "x"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}
