package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned when a Config breaks one of its invariants.
var ErrInvalidConfig = errors.New("chunker: invalid config")

// Config bounds the chunks produced by a Builder. Sizes are in characters
// (runes), not bytes.
type Config struct {
	MinChunkSize         int `validate:"gt=0,ltefield=MaxChunkSize"`
	MaxChunkSize         int `validate:"gt=0"`
	MinSentencesPerChunk int `validate:"gt=0"`
	OverlapSentences     int `validate:"gte=0,ltfield=MinSentencesPerChunk"`
}

// DefaultConfig returns 100/1000 chars, at least 2 sentences, 1 sentence overlap.
func DefaultConfig() Config {
	return Config{
		MinChunkSize:         100,
		MaxChunkSize:         1000,
		MinSentencesPerChunk: 2,
		OverlapSentences:     1,
	}
}

var validate = validator.New()

// Validate reports every broken invariant, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, describe(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "ltefield":
		return fmt.Sprintf("%s (%v) must not exceed %s", e.Field(), e.Value(), e.Param())
	case "ltfield":
		return fmt.Sprintf("%s (%v) must be lower than %s", e.Field(), e.Value(), e.Param())
	default:
		return fmt.Sprintf("%s (%v) failed '%s %s'", e.Field(), e.Value(), e.Tag(), e.Param())
	}
}
