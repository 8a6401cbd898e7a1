package ratelimit

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// Limit caps the number of requests a client may make inside a window.
type Limit struct {
	Window time.Duration
	Max    int64
}

// EndpointConfig is attached to huma operations via Metadata. Operations without one are
// not limited.
type EndpointConfig struct {
	Limits   []Limit
	Disabled bool
}

// PerMinute builds a config allowing max requests per minute. A non-positive max disables it.
func PerMinute(limitPerMinute int64) EndpointConfig {
	if limitPerMinute <= 0 {
		return EndpointConfig{Disabled: true}
	}

	return EndpointConfig{Limits: []Limit{{Window: time.Minute, Max: limitPerMinute}}}
}

// ConfigFor extracts the EndpointConfig from operation metadata, if present.
func ConfigFor(op *huma.Operation) *EndpointConfig {
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
