package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackTask(t *testing.T) {
	ts := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	task, err := NewTrackTask(TrackPayload{
		SiteID:    "site-1",
		EventType: "page_view",
		Timestamp: ts,
		EventData: map[string]any{"page_title": "Home"},
	})
	require.NoError(t, err)
	assert.Equal(t, QueueTrackEvent, task.Type())

	var decoded TrackPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "site-1", decoded.SiteID)
	assert.Equal(t, "Home", decoded.EventData["page_title"])
	assert.True(t, ts.Equal(decoded.Timestamp))
}

func TestNewVerifyTask(t *testing.T) {
	task, err := NewVerifyTask(VerifyPayload{SiteID: "site-1", Platform: "shopify"})
	require.NoError(t, err)
	assert.Equal(t, QueueVerifyPixel, task.Type())
	assert.JSONEq(t, `{"site_id":"site-1","url":"","user_agent":"","session_id":"","platform":"shopify","checked_at":"0001-01-01T00:00:00Z"}`, string(task.Payload()))
}

func TestRedisOpt_DefaultAddr(t *testing.T) {
	assert.Equal(t, "localhost:6379", RedisOpt("").Addr)
	assert.Equal(t, "redis:6380", RedisOpt("redis:6380").Addr)
}
