package shortener

import "time"

// Stats aggregates the recorded clicks of a link.
type Stats struct {
	Code        Code           `json:"code"`
	State       State          `json:"state"`
	Clicks      int            `json:"clicks"`
	LastClickAt *time.Time     `json:"lastClickAt,omitempty"`
	Referrers   map[string]int `json:"referrers"`
	Devices     map[string]int `json:"devices"`
	Countries   map[string]int `json:"countries"`
}

// Summarize computes click breakdowns for a link as of now.
func Summarize(link *Link, now time.Time) Stats {
	stats := Stats{
		Code:      link.ShortCode,
		State:     link.State(now),
		Clicks:    link.Clicks,
		Referrers: map[string]int{},
		Devices:   map[string]int{},
		Countries: map[string]int{},
	}

	for _, click := range link.ClickData {
		stats.Referrers[click.Referrer]++
		stats.Devices[click.Device]++
		stats.Countries[click.Country]++

		if stats.LastClickAt == nil || click.Timestamp.After(*stats.LastClickAt) {
			ts := click.Timestamp
			stats.LastClickAt = &ts
		}
	}

	return stats
}
