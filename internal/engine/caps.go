package engine

import (
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"proofpop/internal/widget"
)

var ErrStorageUnavailable = errors.New("storage unavailable")

// Storage is a small string key/value store, like browser session or local
// storage. Any method may fail; callers treat failure as "no cap".
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// UnavailableStorage fails every call, as storage does inside sandboxed
// frames.
type UnavailableStorage struct{}

func (UnavailableStorage) Get(string) (string, bool, error) { return "", false, ErrStorageUnavailable }
func (UnavailableStorage) Set(string, string) error         { return ErrStorageUnavailable }

const (
	sessionShownKey = "proofpop_shown_"
	sessionCountKey = "proofpop_count_"
	lastShownKey    = "proofpop_last_"
)

// Caps enforces per-widget display frequency at display time.
type Caps struct {
	session    Storage
	persistent Storage
	now        func() time.Time
}

func NewCaps(session, persistent Storage, now func() time.Time) *Caps {
	if session == nil {
		session = UnavailableStorage{}
	}
	if persistent == nil {
		persistent = UnavailableStorage{}
	}
	return &Caps{session: session, persistent: persistent, now: now}
}

// Allow reports whether the widget may show now and, if so, records the
// display.
func (c *Caps) Allow(widgetID string, t widget.Triggers) bool {
	switch t.Frequency {
	case widget.FrequencyOncePerSession:
		key := sessionShownKey + widgetID
		if _, seen, err := c.session.Get(key); err != nil {
			return c.permissive(widgetID, err)
		} else if seen {
			return false
		}
		c.record(c.session, key, "1")
		return true

	case widget.FrequencyOncePerDay:
		key := lastShownKey + widgetID
		now := c.now()
		raw, ok, err := c.persistent.Get(key)
		if err != nil {
			return c.permissive(widgetID, err)
		}
		if ok {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && now.Sub(time.UnixMilli(ms)) < 24*time.Hour {
				return false
			}
		}
		c.record(c.persistent, key, strconv.FormatInt(now.UnixMilli(), 10))
		return true

	default:
		key := sessionCountKey + widgetID
		raw, _, err := c.session.Get(key)
		if err != nil {
			return c.permissive(widgetID, err)
		}
		count, _ := strconv.Atoi(raw)
		if t.MaxPerSession > 0 && count >= t.MaxPerSession {
			return false
		}
		c.record(c.session, key, strconv.Itoa(count+1))
		return true
	}
}

func (c *Caps) permissive(widgetID string, err error) bool {
	slog.Debug("Frequency cap storage unavailable, allowing display", "widget_id", widgetID, "error", err)
	return true
}

func (c *Caps) record(s Storage, key, value string) {
	if err := s.Set(key, value); err != nil {
		slog.Debug("Failed to record display", "key", key, "error", err)
	}
}
