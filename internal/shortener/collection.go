package shortener

import (
	"context"
	"time"
)

// DefaultSlot is the storage slot name the collection is kept under.
const DefaultSlot = "shortenedUrls"

// Collection persists the full set of links as a single record.
//
// Load returns an empty collection when the slot is absent or its content is corrupt; only
// backend failures are returned as errors. Save replaces the whole slot in one write.
type Collection interface {
	Load(ctx context.Context) ([]Link, error)
	Save(ctx context.Context, links []Link) error
}

// Clock returns the current time.
type Clock func() time.Time

// Activity is a structured notification about a lifecycle operation.
type Activity struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Data      map[string]any `json:"data,omitempty"`
}

// Notify delivers an activity to the logging collaborator.
type Notify func(activity *Activity) error

// Activity kinds.
const (
	KindLinkCreated      = "link.created"
	KindValidationFailed = "link.validation_failed"
	KindLinkResolved     = "link.resolved"
	KindLinkNotFound     = "link.not_found"
	KindLinkExpired      = "link.expired"
	KindClickRecorded    = "link.click_recorded"
	KindLinksPurged      = "link.purged"
	KindStorageFailed    = "storage.failed"
)

// Activity levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)
