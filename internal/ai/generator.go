package ai

import (
	"context"
	"errors"
)

// ErrModelUnavailable marks transport-level inference failures: network
// errors, timeouts, provider outages. Malformed but delivered content is not
// this error; the scorer handles that.
var ErrModelUnavailable = errors.New("model unavailable")

// Generator is the narrow interface the scorer talks to. Implementations
// must be safe for concurrent use.
type Generator interface {
	Infer(ctx context.Context, prompt string) (string, error)
	Model() string
}
