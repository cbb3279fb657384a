package translation

import (
	"context"
	"encoding/json"
)

// Generator produces a JSON document for a prompt. Implementations must not
// retry; the caller treats any error as a failed translation.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Name() string
}

type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       json.RawMessage
}
