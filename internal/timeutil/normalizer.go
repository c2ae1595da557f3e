package timeutil

import (
	"math"
	"time"

	"github.com/spec-kit/helpdesk-bot/internal/observability"
)

// Layout is the canonical local-time representation used for storage,
// display and duration arithmetic. It carries no zone indicator.
const Layout = "2006-01-02 15:04:05"

// isoLayouts are accepted for zone-less extended date-time input, which is
// interpreted as UTC before conversion to the reference location.
var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalizer converts arbitrary timestamp inputs to canonical local time in
// one reference location. Malformed input falls back to the current time;
// the fallback is counted on the metrics so operators can see it.
type Normalizer struct {
	loc     *time.Location
	now     func() time.Time
	metrics *observability.Metrics
}

// New builds a Normalizer for the named location (e.g. "Europe/Moscow").
func New(locationName string, metrics *observability.Metrics) (*Normalizer, error) {
	loc, err := time.LoadLocation(locationName)
	if err != nil {
		return nil, err
	}
	return NewWithClock(loc, time.Now, metrics), nil
}

// NewWithClock builds a Normalizer with an injected time source.
func NewWithClock(loc *time.Location, now func() time.Time, metrics *observability.Metrics) *Normalizer {
	return &Normalizer{loc: loc, now: now, metrics: metrics}
}

// Now returns the current time in canonical form.
func (n *Normalizer) Now() string {
	return n.now().In(n.loc).Format(Layout)
}

// FromTime converts a structured timestamp to canonical form. The zero value
// means "absent" and yields the current time.
func (n *Normalizer) FromTime(t time.Time) string {
	if t.IsZero() {
		return n.Now()
	}
	return t.In(n.loc).Format(Layout)
}

// FromString normalizes a timestamp string:
//   - canonical form is taken literally as already-local, no conversion;
//   - extended date-time input is parsed, assumed UTC when zone-less,
//     converted to the reference location and stripped of its zone;
//   - anything else falls back to the current time, silently.
func (n *Normalizer) FromString(s string) string {
	if s == "" {
		return n.Now()
	}
	if _, err := time.ParseInLocation(Layout, s, n.loc); err == nil {
		return s
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(n.loc).Format(Layout)
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.In(n.loc).Format(Layout)
		}
	}
	n.metrics.RecordTimestampFallback()
	return n.Now()
}

// ElapsedHours returns floor(now − from) in whole hours, with both ends
// normalized to canonical local time first.
func (n *Normalizer) ElapsedHours(from string) int {
	start, err := time.ParseInLocation(Layout, n.FromString(from), n.loc)
	if err != nil {
		return 0
	}
	end, err := time.ParseInLocation(Layout, n.Now(), n.loc)
	if err != nil {
		return 0
	}
	return int(math.Floor(end.Sub(start).Hours()))
}
