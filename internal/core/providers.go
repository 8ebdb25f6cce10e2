package core

import "context"

// ChatProvider is a stateless chat-completion capability. One logical
// remote call per invocation; implementations must be safe for
// concurrent use.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message) (Message, error)
}

// Embedder converts text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns the k most relevant passages for a question,
// ordered by relevance rank.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]Passage, error)
}
