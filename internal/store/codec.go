package store

import (
	"encoding/json"

	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// encodeLinks serializes a collection. A nil collection is written as an empty array.
func encodeLinks(links []shortener.Link) ([]byte, error) {
	if links == nil {
		links = []shortener.Link{}
	}

	return json.Marshal(links)
}

// decodeLinks parses a stored collection. Absent or corrupt data yields an empty collection;
// corruption is logged and never returned.
func decodeLinks(data []byte, slot string, logger *zap.Logger) []shortener.Link {
	if len(data) == 0 {
		return nil
	}

	var links []shortener.Link
	if err := json.Unmarshal(data, &links); err != nil {
		logger.Warn("stored collection is corrupt, treating as empty",
			zap.String("slot", slot),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)

		return nil
	}

	return links
}
