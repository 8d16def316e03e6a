package port

import "context"

// CompletionProvider abstracts a generative model that answers a prompt with
// free text. The classifier expects the text to contain one JSON object but
// parsing and recovery are the caller's concern.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
