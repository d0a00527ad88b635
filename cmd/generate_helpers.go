package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/codeloom-cli/internal/ai"
	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
	cfgpkg "github.com/KaramelBytes/codeloom-cli/internal/config"
	"github.com/KaramelBytes/codeloom-cli/internal/project"
	"github.com/KaramelBytes/codeloom-cli/internal/render"
)

// systemPrompt frames every generation request.
const systemPrompt = "You are a senior backend engineer. You write complete, production-ready source files and nothing else."

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	rc := ai.RuntimeConfig{
		HTTPTimeout: 120 * time.Second,
		RetryMax:    3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    4 * time.Second,
	}
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			rc.RetryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			rc.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			rc.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
		rc.BaseURL = cfg.APIBaseURL
	}

	providerName := strings.TrimSpace(opts.ProviderFlag)
	if providerName == "" && cfg != nil {
		providerName = cfg.DefaultProvider
	}
	providerName = ai.NormalizeProvider(providerName)

	rc.APIKey = os.Getenv("OPENROUTER_API_KEY")
	if rc.APIKey == "" && cfg != nil {
		rc.APIKey = cfg.APIKey
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" {
			host = os.Getenv("CODELOOM_OLLAMA_HOST")
		}
		if host == "" && cfg != nil {
			host = cfg.OllamaHost
		}
		rc.Host = host
		if v := os.Getenv("CODELOOM_OLLAMA_TIMEOUT_SEC"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rc.HTTPTimeout = time.Duration(n) * time.Second
			}
		} else if cfg != nil && cfg.OllamaTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
		}
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use %s)", providerName, strings.Join(ai.Providers(), "|"))
	}
	return client, providerName, nil
}

func selectModel(p *project.Project, cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p != nil && p.Config != nil && p.Config.Model != "" {
		return p.Config.Model
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return "openai/gpt-4o-mini"
}

// generationSettings resolves max tokens and temperature with precedence
// flag > project > config > built-in default.
func generationSettings(p *project.Project, cfg *cfgpkg.Global, flagMaxTokens int, flagTemp float64) (int, float64) {
	maxTokens, temp := flagMaxTokens, flagTemp
	if p != nil && p.Config != nil {
		if maxTokens <= 0 {
			maxTokens = p.Config.MaxTokens
		}
		if temp <= 0 {
			temp = p.Config.Temperature
		}
	}
	if cfg != nil {
		if maxTokens <= 0 {
			maxTokens = cfg.MaxTokens
		}
		if temp <= 0 {
			temp = cfg.Temperature
		}
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	if temp <= 0 {
		temp = 0.2
	}
	return maxTokens, temp
}

func buildRequest(model, prompt string, maxTokens int, temp float64) ai.GenerateRequest {
	return ai.GenerateRequest{
		Model: model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temp,
	}
}

type summaryOptions struct {
	JSON   bool
	Quiet  bool
	Writer io.Writer
}

// writeGenerationSummary reports the parsed files of g.
func writeGenerationSummary(g *project.Generation, opts summaryOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.JSON {
		return writeRecordsJSON(w, g.Files)
	}
	if len(g.Files) == 0 {
		fmt.Fprintln(w, "⚠ No files were found in the model response. Inspect it with 'codeloom files raw'.")
		return nil
	}
	if opts.Quiet {
		for _, f := range g.Files {
			fmt.Fprintln(w, f.Path)
		}
		return nil
	}
	fmt.Fprintf(w, "✓ Generated %d files (generation %s)\n", len(g.Files), shortID(g.ID))
	return render.Tree(w, g.Tree(), render.TreeOptions{ShowLanguages: true})
}

func writeRecordsJSON(w io.Writer, files []codegen.FileRecord) error {
	if files == nil {
		files = []codegen.FileRecord{}
	}
	b, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
