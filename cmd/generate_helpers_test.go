package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/codeloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/codeloom-cli/internal/config"
	"github.com/KaramelBytes/codeloom-cli/internal/project"
)

type stubRuntime struct {
	resp *ai.GenerateResponse
	req  ai.GenerateRequest
}

func (s *stubRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	s.req = req
	return s.resp, nil
}

func TestSelectModelPrecedence(t *testing.T) {
	cfg := &cfgpkg.Global{DefaultModel: "cfg-model"}
	p := &project.Project{Config: &project.ProjectConfig{Model: "project-model"}}

	assert.Equal(t, "cli-model", selectModel(p, cfg, "cli-model"))
	assert.Equal(t, "project-model", selectModel(p, cfg, ""))
	p.Config.Model = ""
	assert.Equal(t, "cfg-model", selectModel(p, cfg, ""))
	cfg.DefaultModel = ""
	assert.Equal(t, "openai/gpt-4o-mini", selectModel(p, cfg, ""))
	assert.Equal(t, "openai/gpt-4o-mini", selectModel(nil, nil, ""))
}

func TestGenerationSettingsPrecedence(t *testing.T) {
	cfg := &cfgpkg.Global{MaxTokens: 4000, Temperature: 0.7}
	p := &project.Project{Config: &project.ProjectConfig{MaxTokens: 2000}}

	maxTokens, temp := generationSettings(p, cfg, 0, 0)
	assert.Equal(t, 2000, maxTokens)
	assert.InDelta(t, 0.7, temp, 1e-9)

	maxTokens, temp = generationSettings(p, cfg, 100, 0.1)
	assert.Equal(t, 100, maxTokens)
	assert.InDelta(t, 0.1, temp, 1e-9)

	maxTokens, temp = generationSettings(nil, nil, 0, 0)
	assert.Equal(t, 8192, maxTokens)
	assert.InDelta(t, 0.2, temp, 1e-9)
}

func TestBuildRuntimeDefaults(t *testing.T) {
	cfg := &cfgpkg.Global{DefaultProvider: "local", OllamaHost: "http://example"}
	client, provider, err := buildRuntime(cfg, runtimeOptions{})
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderOllama, provider)
	assert.IsType(t, &ai.OllamaClient{}, client)
}

func TestBuildRuntimeFlagOverridesConfig(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "k")
	cfg := &cfgpkg.Global{DefaultProvider: "ollama"}
	client, provider, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: "anthropic"})
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderOpenRouter, provider)
	assert.IsType(t, &ai.Client{}, client)
}

func TestBuildRuntimeUnknownProvider(t *testing.T) {
	_, _, err := buildRuntime(nil, runtimeOptions{ProviderFlag: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestBuildRequestCarriesSystemPrompt(t *testing.T) {
	rt := &stubRuntime{resp: &ai.GenerateResponse{}}
	req := buildRequest("m", "the prompt", 10, 0.3)
	_, _, err := ai.Complete(context.Background(), rt, req, nil)
	require.NoError(t, err)
	require.Len(t, rt.req.Messages, 2)
	assert.Equal(t, "system", rt.req.Messages[0].Role)
	assert.Equal(t, "the prompt", rt.req.Messages[1].Content)
	assert.Equal(t, 10, rt.req.MaxTokens)
}

func TestWriteGenerationSummary(t *testing.T) {
	p := &project.Project{}
	g := p.RecordGeneration("m", "", "// api/app.js\nconst a = 1;\n// api/db.sql\nselect 1;\n")

	var buf bytes.Buffer
	require.NoError(t, writeGenerationSummary(g, summaryOptions{Writer: &buf}))
	out := buf.String()
	assert.Contains(t, out, "Generated 2 files")
	assert.Contains(t, out, "app.js")
	assert.Contains(t, out, "db.sql")

	buf.Reset()
	require.NoError(t, writeGenerationSummary(g, summaryOptions{Quiet: true, Writer: &buf}))
	assert.Equal(t, "api/app.js\napi/db.sql\n", buf.String())

	buf.Reset()
	require.NoError(t, writeGenerationSummary(g, summaryOptions{JSON: true, Writer: &buf}))
	assert.True(t, strings.HasPrefix(buf.String(), "["))
	assert.Contains(t, buf.String(), `"language": "sql"`)
}

func TestWriteGenerationSummaryEmpty(t *testing.T) {
	p := &project.Project{}
	g := p.RecordGeneration("m", "", "Sorry, I cannot help with that.")

	var buf bytes.Buffer
	require.NoError(t, writeGenerationSummary(g, summaryOptions{Writer: &buf}))
	assert.Contains(t, buf.String(), "No files were found")

	buf.Reset()
	require.NoError(t, writeGenerationSummary(g, summaryOptions{JSON: true, Writer: &buf}))
	assert.Equal(t, "[]\n", buf.String())
}
