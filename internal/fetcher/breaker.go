package fetcher

import (
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrHostOpen is returned when a fetch is rejected because the host's
// breaker is open.
var ErrHostOpen = eris.New("fetcher: host circuit open")

// hostBreaker trips per host after consecutive failures, so one dead or
// blocking site cannot eat the whole batch's retry budget. After the cooldown
// a single probe request is allowed through; success resets the host.
type hostBreaker struct {
	mu        sync.Mutex
	failures  map[string]int
	openUntil map[string]time.Time

	threshold int
	cooldown  time.Duration
}

func newHostBreaker(threshold int, cooldown time.Duration) *hostBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 2 * time.Minute
	}
	return &hostBreaker{
		failures:  make(map[string]int),
		openUntil: make(map[string]time.Time),
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// allow reports whether a request to host may proceed.
func (b *hostBreaker) allow(host string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	until, open := b.openUntil[host]
	if !open {
		return true
	}
	if time.Now().Before(until) {
		return false
	}
	// Cooldown elapsed: let one probe through. The entry stays until the
	// probe's outcome resets or re-trips it.
	delete(b.openUntil, host)
	b.failures[host] = b.threshold - 1
	return true
}

func (b *hostBreaker) onSuccess(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, host)
	delete(b.openUntil, host)
}

func (b *hostBreaker) onFailure(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[host]++
	if b.failures[host] >= b.threshold {
		b.openUntil[host] = time.Now().Add(b.cooldown)
		zap.L().Debug("fetcher: host circuit opened",
			zap.String("host", host),
			zap.Duration("cooldown", b.cooldown),
		)
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
