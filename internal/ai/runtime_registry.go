package ai

import (
	"sort"
	"time"
)

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig carries the knobs shared by every runtime. Fields a runtime
// does not use are ignored.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OpenRouter-compatible endpoints.
	APIKey  string
	BaseURL string

	// Ollama.
	Host string
}

var factories = map[string]RuntimeFactory{}

// RegisterRuntime makes a provider available to GetRuntime.
func RegisterRuntime(name string, f RuntimeFactory) { factories[name] = f }

// GetRuntime creates the Runtime registered for the (normalized) provider.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	f, ok := factories[NormalizeProvider(name)]
	if !ok {
		return nil, false
	}
	return f(cfg), true
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) Runtime {
		return NewClientWithBaseURL(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay, c.BaseURL)
	})
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime {
		return NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
}
