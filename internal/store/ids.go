package store

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out transaction identifiers.
type IDGenerator interface {
	NewID() string
}

// TimestampIDs produces millisecond Unix timestamps as decimal strings,
// bumped by one whenever the clock has not advanced past the last id.
type TimestampIDs struct {
	now  func() time.Time
	last int64
}

func NewTimestampIDs(now func() time.Time) *TimestampIDs {
	if now == nil {
		now = time.Now
	}
	return &TimestampIDs{now: now}
}

func (g *TimestampIDs) NewID() string {
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// UUIDs produces random version 4 UUIDs.
type UUIDs struct{}

func (UUIDs) NewID() string {
	return uuid.NewString()
}
