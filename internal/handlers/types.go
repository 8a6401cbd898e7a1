package handlers

import (
	"time"

	"github.com/serroba/link-lifecycle/internal/shortener"
)

// SubmissionBody is the user input for one short link.
type SubmissionBody struct {
	OriginalURL     string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"originalUrl" required:"false"`
	ValidityMinutes *int   `doc:"Minutes until the link expires" example:"30" json:"validityMinutes,omitempty"`
	CustomCode      string `doc:"Optional custom short code" example:"my-link" json:"customCode,omitempty"`
}

func (b SubmissionBody) submission() shortener.Submission {
	return shortener.Submission{
		OriginalURL:     b.OriginalURL,
		ValidityMinutes: b.ValidityMinutes,
		CustomCode:      b.CustomCode,
	}
}

// LinkBody describes a stored link.
type LinkBody struct {
	Code        string          `doc:"The short code" example:"abc123" json:"code"`
	ShortURL    string          `doc:"The full short URL" example:"http://localhost:8888/abc123" json:"shortUrl"`
	OriginalURL string          `doc:"The original URL" json:"originalUrl"`
	CreatedAt   time.Time       `doc:"Creation time" json:"createdAt"`
	ExpiresAt   time.Time       `doc:"Expiry time" json:"expiresAt"`
	State       shortener.State `doc:"active or expired" enum:"active,expired" json:"state"`
	Clicks      int             `doc:"Number of recorded clicks" json:"clicks"`
}

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body SubmissionBody
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     LinkBody
}

// ValidateRequest is the request for checking a submission without creating it.
type ValidateRequest struct {
	Body SubmissionBody
}

// ValidateResponse lists the violations of a submission keyed by field.
type ValidateResponse struct {
	Body struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
}

// BatchRequest carries several submissions created in order.
type BatchRequest struct {
	Body struct {
		Items []SubmissionBody `doc:"Submissions to create" json:"items"`
	}
}

// BatchItem is the outcome of one batch submission.
type BatchItem struct {
	Link   *LinkBody         `json:"link,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// BatchResponse lists one outcome per submission, in request order.
type BatchResponse struct {
	Body struct {
		Created int         `json:"created"`
		Aborted bool        `doc:"Set when a failure stopped the batch early" json:"aborted"`
		Results []BatchItem `json:"results"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse sends the client on to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// ListLinksResponse lists every stored link.
type ListLinksResponse struct {
	Body struct {
		Links []LinkBody `json:"links"`
	}
}

// GetLinkRequest addresses one link by code.
type GetLinkRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// GetLinkResponse is the statistics view of one link.
type GetLinkResponse struct {
	Body struct {
		Link      LinkBody          `json:"link"`
		Stats     shortener.Stats   `json:"stats"`
		ClickData []shortener.Click `json:"clickData"`
	}
}

// PurgeResponse reports how many expired links were removed.
type PurgeResponse struct {
	Body struct {
		Removed int `json:"removed"`
	}
}
