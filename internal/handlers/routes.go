package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-lifecycle/internal/ratelimit"
)

// RouteLimits holds the per-minute request budgets per client.
type RouteLimits struct {
	ShortenPerMinute  int64
	RedirectPerMinute int64
}

// RegisterRoutes registers all link routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, h *LinkHandler, limits RouteLimits) {
	shorten := map[string]any{ratelimit.MetadataKey: ratelimit.PerMinute(limits.ShortenPerMinute)}

	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Validates the submission and stores a new short link.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Metadata:      shorten,
	}, h.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "create-short-url-batch",
		Method:      http.MethodPost,
		Path:        "/shorten/batch",
		Summary:     "Create several short URLs",
		Description: "Creates up to five submissions in order and reports each outcome.",
		Tags:        []string{"Links"},
		Metadata:    shorten,
	}, h.CreateBatch)

	huma.Register(api, huma.Operation{
		OperationID: "validate-submission",
		Method:      http.MethodPost,
		Path:        "/shorten/validate",
		Summary:     "Validate a submission",
		Description: "Reports field violations without creating anything.",
		Tags:        []string{"Links"},
	}, h.ValidateSubmission)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/links",
		Summary:     "List links",
		Tags:        []string{"Statistics"},
	}, h.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/links/{code}",
		Summary:     "Link statistics",
		Description: "Returns the link, its state and click breakdowns.",
		Tags:        []string{"Statistics"},
	}, h.GetLink)

	huma.Register(api, huma.Operation{
		OperationID: "purge-expired-links",
		Method:      http.MethodDelete,
		Path:        "/links/expired",
		Summary:     "Purge expired links",
		Tags:        []string{"Links"},
	}, h.PurgeExpired)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Records a click and redirects to the original URL of an active link.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.PerMinute(limits.RedirectPerMinute),
		},
	}, h.RedirectToURL)
}
