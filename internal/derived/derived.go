// Package derived memoizes per-bond metrics computed from dates: days to
// maturity and elapsed-term progress. Values are keyed by bond id and share
// one freshness timestamp set by Refresh.
package derived

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// DefaultWindow is how long a refresh keeps cached values fresh.
const DefaultWindow = time.Minute

const day = 24 * time.Hour

// Metrics are the derived values for one bond.
type Metrics struct {
	DaysToMaturity     int       `json:"daysToMaturity"`
	ProgressPercentage float64   `json:"progressPercentage"`
	ComputedAt         time.Time `json:"computedAt"`
}

// Compute derives metrics for b at now. Days are rounded up and floored at
// zero; progress is clamped to [0, 100].
func Compute(b models.Bond, now time.Time) (Metrics, error) {
	issue, maturity, err := term(b)
	if err != nil {
		return Metrics{}, err
	}
	days := daysUntil(maturity, now)
	if days < 0 {
		days = 0
	}
	return Metrics{
		DaysToMaturity:     days,
		ProgressPercentage: progress(issue, maturity, now),
		ComputedAt:         now,
	}, nil
}

func term(b models.Bond) (issue, maturity time.Time, err error) {
	issue, err = b.IssueDate()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bond %d: %w", b.ID, err)
	}
	return issue, models.MaturityDate(issue, b.PlazoAnios), nil
}

// daysUntil is ceil((t - now) / 24h), unfloored.
func daysUntil(t, now time.Time) int {
	return int(math.Ceil(float64(t.Sub(now)) / float64(day)))
}

func progress(issue, maturity, now time.Time) float64 {
	total := maturity.Sub(issue)
	elapsed := now.Sub(issue)
	if total <= 0 {
		if elapsed < 0 {
			return 0
		}
		return 100
	}
	pct := float64(elapsed) / float64(total) * 100
	return math.Min(math.Max(pct, 0), 100)
}

// --- Status ---

// Status is the lifecycle state of a bond.
type Status string

const (
	Active  Status = "active"
	Pending Status = "pending" // matures within 30 days
	Matured Status = "matured"
)

// PendingDays is the window before maturity in which a bond is Pending.
const PendingDays = 30

// Label returns the display label.
func (s Status) Label() string {
	switch s {
	case Matured:
		return "Vencido"
	case Pending:
		return "Próximo a vencer"
	}
	return "Activo"
}

// StatusOf classifies b at now.
func StatusOf(b models.Bond, now time.Time) (Status, error) {
	_, maturity, err := term(b)
	if err != nil {
		return "", err
	}
	switch days := daysUntil(maturity, now); {
	case days < 0:
		return Matured, nil
	case days <= PendingDays:
		return Pending, nil
	}
	return Active, nil
}

// --- Cache ---

// Cache memoizes Metrics by bond id. Refresh is the only bulk writer; Get
// fills single misses.
type Cache struct {
	window time.Duration

	mu          sync.RWMutex
	entries     map[int64]Metrics
	refreshedAt time.Time
}

// New creates a cache whose refreshes stay fresh for window.
func New(window time.Duration) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache{window: window, entries: make(map[int64]Metrics)}
}

// Window returns the freshness window.
func (c *Cache) Window() time.Duration { return c.window }

// Fresh reports whether the last refresh is within the window at now.
func (c *Cache) Fresh(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh(now)
}

func (c *Cache) fresh(now time.Time) bool {
	return !c.refreshedAt.IsZero() && now.Sub(c.refreshedAt) < c.window
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns cached metrics when the cache is fresh and holds b; otherwise
// it computes, stores and returns them. A lazy store doesn't move the
// refresh timestamp.
func (c *Cache) Get(b models.Bond, now time.Time) (Metrics, error) {
	c.mu.RLock()
	m, ok := c.entries[b.ID]
	fresh := c.fresh(now)
	c.mu.RUnlock()
	if ok && fresh {
		return m, nil
	}

	m, err := Compute(b, now)
	if err != nil {
		return Metrics{}, err
	}
	c.mu.Lock()
	c.entries[b.ID] = m
	c.mu.Unlock()
	return m, nil
}

// Refresh clears the cache and recomputes exactly bonds at now. Bonds
// whose dates can't be parsed are left out and reported in the returned
// error.
func (c *Cache) Refresh(bonds []models.Bond, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int64]Metrics, len(bonds))
	c.refreshedAt = now
	var errs []error
	for _, b := range bonds {
		m, err := Compute(b, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.entries[b.ID] = m
	}
	return errors.Join(errs...)
}

// Snapshot returns a copy of the cached entries.
func (c *Cache) Snapshot() map[int64]Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int64]Metrics, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
