package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueTrackEvent     = "track_event"
	QueueVerifyPixel    = "verify_pixel"
	QueueSecretRotation = "secret_rotation"
)

// TrackPayload is one tracking call from the pixel or a merchant back end.
type TrackPayload struct {
	SiteID    string         `json:"site_id"`
	SessionID string         `json:"session_id"`
	EventType string         `json:"event_type"`
	URL       string         `json:"url"`
	UserAgent string         `json:"user_agent"`
	Referrer  string         `json:"referrer"`
	Timestamp time.Time      `json:"timestamp"`
	EventData map[string]any `json:"event_data"`
	IP        string         `json:"ip"`
}

type VerifyPayload struct {
	SiteID    string    `json:"site_id"`
	URL       string    `json:"url"`
	UserAgent string    `json:"user_agent"`
	SessionID string    `json:"session_id"`
	Platform  string    `json:"platform"`
	CheckedAt time.Time `json:"checked_at"`
}

type SecretRotationPayload struct {
	KeyID string `json:"key_id"`
}

type Client struct {
	client *asynq.Client
}

func RedisOpt(addr string) asynq.RedisClientOpt {
	if addr == "" {
		addr = "localhost:6379"
	}
	return asynq.RedisClientOpt{Addr: addr}
}

func NewClient(redisAddr string) *Client {
	c := &Client{client: asynq.NewClient(RedisOpt(redisAddr))}
	slog.Info("Successfully initialized task queue", "redis_addr", redisAddr)
	return c
}

// NewTrackTask builds the task for a tracking call.
func NewTrackTask(p TrackPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(QueueTrackEvent, payload), nil
}

func NewVerifyTask(p VerifyPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(QueueVerifyPixel, payload), nil
}

func (c *Client) EnqueueTrack(ctx context.Context, p TrackPayload) (string, error) {
	task, err := NewTrackTask(p)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueTrackEvent),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
		asynq.Retention(time.Hour),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}
	return info.ID, nil
}

func (c *Client) EnqueueVerify(ctx context.Context, p VerifyPayload) (string, error) {
	task, err := NewVerifyTask(p)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueVerifyPixel),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}
	return info.ID, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
