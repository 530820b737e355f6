// Package llm abstracts the text-generation capability agents depend on.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat constrains a structured completion to a named strict
// JSON schema.
type ResponseFormat struct {
	Name   string
	Schema *Schema
}

// Client generates chat completions. Implementations must honor ctx
// cancellation and return an error on any transport or provider failure.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	CompleteStructured(ctx context.Context, messages []Message, format ResponseFormat) (json.RawMessage, error)
}

var ErrEmptyCompletion = errors.New("completion contained no choices")
