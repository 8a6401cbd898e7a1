package handlers

import (
	"context"

	"github.com/serroba/link-lifecycle/internal/shortener"
)

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata used to describe a visit.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
	Country   string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// Visit converts the metadata into click attributes.
func (m RequestMeta) Visit() shortener.Visit {
	return shortener.Visit{
		Referrer: m.Referrer,
		Device:   m.UserAgent,
		Country:  m.Country,
	}
}
