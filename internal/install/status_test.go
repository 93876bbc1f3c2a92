package install

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummaryUpdate(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	update := summaryUpdate(Verification{SiteID: "site-1", URL: "https://shop.test/", Platform: "shopify", VerifiedAt: at})
	assert.Equal(t, "site-1", update["site_id"])
	assert.Equal(t, true, update["verified"])
	assert.Equal(t, "https://shop.test/", update["last_url"])
	assert.Equal(t, at, update["last_seen_at"])
	assert.Equal(t, "shopify", update["platform"])
	assert.Contains(t, update, "verification_count")

	update = summaryUpdate(Verification{SiteID: "site-1"})
	assert.NotContains(t, update, "platform")
}

func TestRecordVerification_RequiresSite(t *testing.T) {
	s := NewStatusService(nil)
	err := s.RecordVerification(context.Background(), Verification{})
	assert.EqualError(t, err, "site id is required")
}

func TestInitStatusService_WithoutFirebase(t *testing.T) {
	assert.Error(t, InitStatusService())
	assert.Nil(t, GetStatusService())
}
