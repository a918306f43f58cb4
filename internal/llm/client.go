package llm

import "context"

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client abstracts the hosted generative model. Services depend on this
// interface so tests can swap in fakes.
type Client interface {
	GenerateContent(ctx context.Context, prompt string, history []Message) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
