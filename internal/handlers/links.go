package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// LinkHandler exposes the link lifecycle over HTTP.
type LinkHandler struct {
	manager *shortener.Manager
	baseURL string
	logger  *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(manager *shortener.Manager, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		manager: manager,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *LinkHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	link, err := h.manager.Create(ctx, req.Body.submission())
	if err != nil {
		return nil, h.httpError("create", err)
	}

	body := h.linkBody(link)

	return &CreateShortURLResponse{Location: body.ShortURL, Body: body}, nil
}

func (h *LinkHandler) ValidateSubmission(ctx context.Context, req *ValidateRequest) (*ValidateResponse, error) {
	violations, err := h.manager.Validate(ctx, req.Body.submission())
	if err != nil {
		return nil, h.httpError("validate", err)
	}

	resp := &ValidateResponse{}
	resp.Body.Valid = len(violations) == 0
	resp.Body.Errors = violations.Messages()

	return resp, nil
}

func (h *LinkHandler) CreateBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	subs := make([]shortener.Submission, len(req.Body.Items))
	for i, item := range req.Body.Items {
		subs[i] = item.submission()
	}

	results, err := h.manager.CreateBatch(ctx, subs)
	if err != nil && !anyCreated(results) {
		return nil, h.httpError("create batch", err)
	}

	resp := &BatchResponse{}
	resp.Body.Aborted = err != nil
	resp.Body.Results = make([]BatchItem, len(results))

	for i, result := range results {
		var vErr *shortener.ValidationError

		switch {
		case result.Err == nil:
			body := h.linkBody(result.Link)
			resp.Body.Results[i] = BatchItem{Link: &body}
			resp.Body.Created++
		case errors.As(result.Err, &vErr):
			resp.Body.Results[i] = BatchItem{Errors: vErr.Violations.Messages()}
		default:
			resp.Body.Results[i] = BatchItem{Error: result.Err.Error()}
		}
	}

	if err != nil {
		h.logger.Warn("batch partially created",
			zap.Int("created", resp.Body.Created),
			zap.Int("size", len(results)),
			zap.Error(err),
		)
	}

	return resp, nil
}

func anyCreated(results []shortener.BatchResult) bool {
	for _, result := range results {
		if result.Err == nil {
			return true
		}
	}

	return false
}

func (h *LinkHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	link, err := h.manager.Resolve(ctx, shortener.Code(req.Code), meta.Visit())
	if err != nil {
		return nil, h.httpError("redirect", err)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.OriginalURL,
	}, nil
}

func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	links, err := h.manager.List(ctx)
	if err != nil {
		return nil, h.httpError("list", err)
	}

	resp := &ListLinksResponse{}
	resp.Body.Links = make([]LinkBody, len(links))

	for i := range links {
		resp.Body.Links[i] = h.linkBody(&links[i])
	}

	return resp, nil
}

func (h *LinkHandler) GetLink(ctx context.Context, req *GetLinkRequest) (*GetLinkResponse, error) {
	link, err := h.manager.Get(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, h.httpError("get", err)
	}

	resp := &GetLinkResponse{}
	resp.Body.Link = h.linkBody(link)
	resp.Body.Stats = shortener.Summarize(link, h.manager.Now())
	resp.Body.ClickData = link.ClickData

	if resp.Body.ClickData == nil {
		resp.Body.ClickData = []shortener.Click{}
	}

	return resp, nil
}

func (h *LinkHandler) PurgeExpired(ctx context.Context, _ *struct{}) (*PurgeResponse, error) {
	removed, err := h.manager.PurgeExpired(ctx)
	if err != nil {
		return nil, h.httpError("purge", err)
	}

	resp := &PurgeResponse{}
	resp.Body.Removed = removed

	return resp, nil
}

func (h *LinkHandler) linkBody(link *shortener.Link) LinkBody {
	return LinkBody{
		Code:        string(link.ShortCode),
		ShortURL:    shortener.ShortURL(h.baseURL, link.ShortCode),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		State:       link.State(h.manager.Now()),
		Clicks:      link.Clicks,
	}
}
