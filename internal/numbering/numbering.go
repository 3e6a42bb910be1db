// Package numbering produces the human-readable sequential display numbers
// used across the application ("OS #001" for service orders, "AG #001" for
// appointments). The number is derived from the highest persisted value, so
// it is display-oriented, not a concurrency-safe primary key.
package numbering

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"assistec_backend/platform/logger"
)

// Kind identifies which sequence a number belongs to.
type Kind string

const (
	// KindServiceOrder numbers service orders ("OS #NNN").
	KindServiceOrder Kind = "service_order"
	// KindPreSchedule numbers appointments ("AG #NNN").
	KindPreSchedule Kind = "pre_schedule"
)

// Prefix returns the display prefix for the kind.
func (k Kind) Prefix() string {
	if k == KindPreSchedule {
		return "AG"
	}
	return "OS"
}

var numberPattern = regexp.MustCompile(`^(OS|AG) #(\d+)$`)

// Format renders a sequence value as a display number, zero-padded to a
// minimum of three digits ("OS #007"; values beyond 999 render unpadded).
func Format(value int, kind Kind) string {
	return fmt.Sprintf("%s #%03d", kind.Prefix(), value)
}

// Extract parses the numeric value out of a display number of the given
// kind. Returns 0 and false when the text does not match the kind.
func Extract(text string, kind Kind) (int, bool) {
	matches := numberPattern.FindStringSubmatch(text)
	if matches == nil || matches[1] != kind.Prefix() {
		return 0, false
	}
	value, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, false
	}
	return value, true
}

// Valid reports whether text is a well-formed display number for the kind.
func Valid(text string, kind Kind) bool {
	_, ok := Extract(text, kind)
	return ok
}

// MaxNumberStore reads the single highest persisted display number for the
// generator's kind. An empty string with a nil error means no record exists yet.
type MaxNumberStore interface {
	MaxDisplayNumber(ctx context.Context) (string, error)
}

// Generator allocates the next display number for one kind, backed by the
// table that persists numbers of that kind.
type Generator struct {
	store MaxNumberStore
	kind  Kind
	log   *logger.Logger
	now   func() time.Time
}

// NewGenerator creates a display number generator for the given kind.
func NewGenerator(store MaxNumberStore, kind Kind, log *logger.Logger) *Generator {
	return &Generator{store: store, kind: kind, log: log, now: time.Now}
}

// Next returns the next display number. When the store query fails, it falls
// back to a timestamp-derived value so callers can still proceed; strict
// sequentiality is lost in that path and a warning is logged.
func (g *Generator) Next(ctx context.Context) string {
	current, err := g.store.MaxDisplayNumber(ctx)
	if err != nil {
		fallback := int(g.now().Unix() % 1_000_000)
		if g.log != nil {
			g.log.BestEffortFailure("numbering.next", err)
		}
		return Format(fallback, g.kind)
	}

	if current == "" {
		return Format(1, g.kind)
	}

	value, ok := Extract(current, g.kind)
	if !ok {
		return Format(1, g.kind)
	}

	return Format(value+1, g.kind)
}
