package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// DefaultCodeLength is the length of generated codes.
const DefaultCodeLength = 6

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a generator drawing uniformly from [A-Za-z0-9_-].
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length < 1 || length > MaxCodeLength {
		return nil, fmt.Errorf("code length must be between 1 and %d, got %d", MaxCodeLength, length)
	}

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return gen, nil
}
