package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// httpError maps lifecycle errors onto HTTP status codes.
func (h *LinkHandler) httpError(op string, err error) error {
	var vErr *shortener.ValidationError

	switch {
	case errors.As(err, &vErr):
		details := violationDetails(vErr.Violations)

		if onlyCollision(vErr.Violations) {
			return huma.Error409Conflict("short code already in use", details...)
		}

		return huma.Error422UnprocessableEntity("validation failed", details...)
	case errors.Is(err, shortener.ErrCodeCollision):
		return huma.Error409Conflict("could not allocate a free short code")
	case errors.Is(err, shortener.ErrEmptyBatch), errors.Is(err, shortener.ErrBatchTooLarge):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrExpired):
		return huma.Error410Gone("short url has expired")
	case errors.Is(err, shortener.ErrStorageUnavailable):
		h.logger.Error(op+" failed", zap.Error(err))

		return huma.Error503ServiceUnavailable("storage unavailable")
	default:
		h.logger.Error(op+" failed", zap.Error(err))

		return huma.Error500InternalServerError("internal server error")
	}
}

func violationDetails(violations shortener.Violations) []error {
	details := make([]error, 0, len(violations))

	for _, field := range violations.Fields() {
		details = append(details, &huma.ErrorDetail{
			Location: "body." + field,
			Message:  violations[field].Error(),
		})
	}

	return details
}

func onlyCollision(violations shortener.Violations) bool {
	if len(violations) != 1 {
		return false
	}

	err, ok := violations[shortener.FieldCustomCode]

	return ok && errors.Is(err, shortener.ErrCodeCollision)
}
