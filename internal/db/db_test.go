package db

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofpop/internal/notification"
	"proofpop/internal/widget"
)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStore(sqlx.NewDb(conn, "postgres")), mock
}

func TestActiveWidgets_DecodesColumnsAndConfig(t *testing.T) {
	store, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "site_id", "name", "template_id", "settings", "config"}).
		AddRow("w1", "site-1", "Recent sales", "recent_purchase",
			[]byte(`{"position":"top-right","display_duration":8}`),
			[]byte(`{"display":{"animation":"zoom"}}`)).
		AddRow("w2", "site-1", "Broken", "", []byte(`not json`), []byte(`{}`))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM widgets`)).
		WithArgs("site-1", "").
		WillReturnRows(rows)

	records, err := store.ActiveWidgets(context.Background(), "site-1", "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "w1", records[0].ID)
	require.NotNil(t, records[0].Columns.Position)
	assert.Equal(t, "top-right", *records[0].Columns.Position)
	require.NotNil(t, records[0].Config.Display.Animation)
	assert.Equal(t, "zoom", *records[0].Config.Display.Animation)

	s := widget.Normalize(records[1])
	assert.Equal(t, widget.PositionBottomLeft, s.Visual.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveWidgets_QueryError(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM widgets`)).WillReturnError(sql.ErrConnDone)

	_, err := store.ActiveWidgets(context.Background(), "site-1", "w1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestRecentEvents(t *testing.T) {
	store, mock := setupMockDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	since := now.Add(-7 * 24 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "site_id", "session_id", "event_type", "created_at", "metadata"}).
		AddRow("e1", "site-1", "s1", "purchase", now, []byte(`{"customer_name":"Jane","value":49.99}`)).
		AddRow("e2", "site-1", "", "signup", now.Add(-time.Hour), []byte(`{}`))

	mock.ExpectQuery(regexp.QuoteMeta(`event_type = ANY($2) AND created_at >= $3`)).
		WithArgs("site-1", sqlmock.AnyArg(), since, 10).
		WillReturnRows(rows)

	events, err := store.RecentEvents(context.Background(), notification.EventQuery{
		SiteID: "site-1",
		Types:  []notification.EventType{notification.EventPurchase, notification.EventSignup},
		Since:  since,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, notification.EventPurchase, events[0].EventType)
	assert.Equal(t, "Jane", events[0].Metadata["customer_name"])
	assert.Equal(t, 49.99, events[0].Metadata["value"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountLiveSessions(t *testing.T) {
	store, mock := setupMockDB(t)
	since := time.Now().Add(-notification.LiveWindow)

	mock.ExpectQuery(regexp.QuoteMeta(`COUNT(DISTINCT session_id)`)).
		WithArgs("site-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := store.CountLiveSessions(context.Background(), "site-1", since)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInsertEvent(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO events`)).
		WithArgs(sqlmock.AnyArg(), "site-1", "s1", "purchase", "https://shop.test/", "", "ua", "", "abc",
			[]byte(`{"product_name":"Mug"}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.InsertEvent(context.Background(), EventRecord{
		SiteID:    "site-1",
		SessionID: "s1",
		EventType: "purchase",
		URL:       "https://shop.test/",
		UserAgent: "ua",
		IPHash:    "abc",
		Metadata:  map[string]any{"product_name": "Mug"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSite_NotFound(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sites WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetSite(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngestSecret(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ingest_secret FROM sites`)).
		WithArgs("site-1").
		WillReturnRows(sqlmock.NewRows([]string{"ingest_secret"}).AddRow("Y2lwaGVy"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ingest_secret FROM sites`)).
		WithArgs("site-2").
		WillReturnRows(sqlmock.NewRows([]string{"ingest_secret"}).AddRow(nil))

	secret, err := store.IngestSecret(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, "Y2lwaGVy", secret)

	_, err = store.IngestSecret(context.Background(), "site-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureSecretRotation(t *testing.T) {
	store, mock := setupMockDB(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM secret_rotation`)).
		WithArgs("key-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO secret_rotation`)).
		WithArgs("key-1", now, now.Add(SecretRotationInterval)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.EnsureSecretRotation(context.Background(), "key-1", now)
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM secret_rotation`)).
		WithArgs("key-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	created, err = store.EnsureSecretRotation(context.Background(), "key-1", now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
