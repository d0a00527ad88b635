package ai

import (
	"context"
	"strings"
)

// Runtime is a minimal interface implemented by AI backends/runtimes
// such as OpenRouter and local runtimes (e.g., Ollama).
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// StreamRuntime is an optional extension that supports streaming output.
// Implementors should invoke onDelta with each partial content chunk.
type StreamRuntime interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// NormalizeProvider maps user-facing aliases onto a registered provider name.
func NormalizeProvider(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "openrouter", "openai", "anthropic", "google", "gemini", "meta", "llama":
		return ProviderOpenRouter
	case "ollama", "local":
		return ProviderOllama
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// Complete runs req and returns the full response text. With onDelta set and
// a streaming runtime, chunks are forwarded as they arrive and then joined.
func Complete(ctx context.Context, rt Runtime, req GenerateRequest, onDelta func(string)) (string, string, error) {
	if sr, ok := rt.(StreamRuntime); ok && onDelta != nil {
		var sb strings.Builder
		err := sr.GenerateStream(ctx, req, func(d string) {
			sb.WriteString(d)
			onDelta(d)
		})
		if err != nil {
			return "", "", err
		}
		return sb.String(), "", nil
	}
	resp, err := rt.Generate(ctx, req)
	if err != nil {
		return "", "", err
	}
	return resp.Content(), resp.RequestID, nil
}
