package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHostBreakerTripsAfterThreshold(t *testing.T) {
	b := newHostBreaker(3, time.Hour)

	assert.True(t, b.allow("dead.example"))
	b.onFailure("dead.example")
	b.onFailure("dead.example")
	assert.True(t, b.allow("dead.example"), "below threshold")

	b.onFailure("dead.example")
	assert.False(t, b.allow("dead.example"), "tripped at threshold")

	// Other hosts are unaffected.
	assert.True(t, b.allow("alive.example"))
}

func TestHostBreakerSuccessResets(t *testing.T) {
	b := newHostBreaker(3, time.Hour)

	b.onFailure("flaky.example")
	b.onFailure("flaky.example")
	b.onSuccess("flaky.example")

	b.onFailure("flaky.example")
	b.onFailure("flaky.example")
	assert.True(t, b.allow("flaky.example"), "counter restarted after success")
}

func TestHostBreakerProbeAfterCooldown(t *testing.T) {
	b := newHostBreaker(2, 10*time.Millisecond)

	b.onFailure("slow.example")
	b.onFailure("slow.example")
	assert.False(t, b.allow("slow.example"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.allow("slow.example"), "one probe allowed after cooldown")

	// A failing probe re-trips immediately.
	b.onFailure("slow.example")
	assert.False(t, b.allow("slow.example"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.com", hostOf("https://example.com/page"))
	assert.Equal(t, "example.com:8080", hostOf("http://example.com:8080"))
	assert.Equal(t, "", hostOf("://bad"))
}
