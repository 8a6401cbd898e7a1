package shortener

import (
	"fmt"
	"strings"
	"time"
)

// Code represents a short link code.
type Code string

// DefaultValidity is applied when a submission carries no validity window.
const DefaultValidity = 30 * time.Minute

// Default click attributes used when the request carries no information.
const (
	DirectReferrer = "direct"
	UnknownValue   = "Unknown"
)

// State is the lifecycle state of a link at a given instant.
type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
)

// Link is a persisted short link record. The JSON layout is the stored collection format.
type Link struct {
	OriginalURL string    `json:"originalUrl"`
	ShortCode   Code      `json:"shortCode"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Clicks      int       `json:"clicks"`
	ClickData   []Click   `json:"clickData"`
}

// Click is a single successful resolution of a link.
type Click struct {
	Timestamp time.Time `json:"timestamp"`
	Referrer  string    `json:"referrer"`
	Device    string    `json:"device"`
	Country   string    `json:"country"`
}

// Visit carries the request attributes a click is built from.
type Visit struct {
	Referrer string
	Device   string
	Country  string
}

// NewClick builds a click at the given time, filling missing attributes with defaults.
func NewClick(at time.Time, visit Visit) Click {
	return Click{
		Timestamp: at.UTC(),
		Referrer:  orDefault(visit.Referrer, DirectReferrer),
		Device:    orDefault(visit.Device, UnknownValue),
		Country:   orDefault(visit.Country, UnknownValue),
	}
}

// IsExpired reports whether the link no longer resolves at now.
func (l *Link) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// State returns the lifecycle state of the link at now.
func (l *Link) State(now time.Time) State {
	if l.IsExpired(now) {
		return StateExpired
	}

	return StateActive
}

// Validity returns the length of the link's validity window.
func (l *Link) Validity() time.Duration {
	return l.ExpiresAt.Sub(l.CreatedAt)
}

func (l *Link) recordClick(click Click) {
	l.ClickData = append(l.ClickData, click)
	l.Clicks = len(l.ClickData)
}

func (l *Link) clone() *Link {
	c := *l
	c.ClickData = append([]Click(nil), l.ClickData...)

	return &c
}

// ShortURL builds the public short URL for a code.
func ShortURL(baseURL string, code Code) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(baseURL, "/"), code)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func indexOf(links []Link, code Code) int {
	for i := range links {
		if links[i].ShortCode == code {
			return i
		}
	}

	return -1
}
