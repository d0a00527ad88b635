package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userReq(model string) GenerateRequest {
	return GenerateRequest{Model: model, Messages: []Message{{Role: "user", Content: "hi"}}}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	c := NewClient("", time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), userReq("m"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")
}

func TestGenerateServerErrorAfterRetries(t *testing.T) {
	srv := testServerSequence(t, []int{500, 502, 503}, nil, nil)
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 3, time.Millisecond, 5*time.Millisecond, srv.URL)
	_, err := c.Generate(context.Background(), userReq("m"))
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.StatusCode)
}

func TestGenerateAuthErrorNotRetried(t *testing.T) {
	var calls int32
	srv := newLocalServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "no key"}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("bad", 2*time.Second, 3, time.Millisecond, time.Millisecond, srv.URL)
	_, err := c.Generate(context.Background(), userReq("m"))
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	explained := Explain(err, ProviderOpenRouter, "m")
	assert.Contains(t, explained.Error(), "OPENROUTER_API_KEY")
	assert.ErrorAs(t, explained, &ae)
}

func TestExplainUnreachableOllama(t *testing.T) {
	err := Explain(&UnreachableError{Host: "http://x", Err: errors.New("refused")}, ProviderOllama, "llama3")
	assert.Contains(t, err.Error(), "Ollama not reachable at http://x")
	assert.Nil(t, Explain(nil, "", ""))
}

func TestNormalizeProvider(t *testing.T) {
	assert.Equal(t, ProviderOpenRouter, NormalizeProvider(""))
	assert.Equal(t, ProviderOpenRouter, NormalizeProvider("Anthropic"))
	assert.Equal(t, ProviderOllama, NormalizeProvider("local"))
	assert.Equal(t, "bogus", NormalizeProvider(" Bogus "))
	_, ok := GetRuntime("bogus", RuntimeConfig{})
	assert.False(t, ok)
	assert.Equal(t, []string{ProviderOllama, ProviderOpenRouter}, Providers())
}

type fakeRuntime struct{ content string }

func (f fakeRuntime) Generate(context.Context, GenerateRequest) (*GenerateResponse, error) {
	return &GenerateResponse{Choices: []Choice{{Message: Message{Content: f.content}}}, RequestID: "rid"}, nil
}

type fakeStreamRuntime struct {
	fakeRuntime
	chunks []string
}

func (f fakeStreamRuntime) GenerateStream(_ context.Context, _ GenerateRequest, onDelta func(string)) error {
	for _, c := range f.chunks {
		onDelta(c)
	}
	return nil
}

func TestCompleteNonStreaming(t *testing.T) {
	text, rid, err := Complete(context.Background(), fakeRuntime{content: "// a.js\nx"}, userReq("m"), nil)
	require.NoError(t, err)
	assert.Equal(t, "// a.js\nx", text)
	assert.Equal(t, "rid", rid)
}

func TestCompleteStreamingJoinsChunks(t *testing.T) {
	rt := fakeStreamRuntime{chunks: []string{"// a", ".js\n", "x"}}
	var seen []string
	text, _, err := Complete(context.Background(), rt, userReq("m"), func(d string) { seen = append(seen, d) })
	require.NoError(t, err)
	assert.Equal(t, "// a.js\nx", text)
	assert.Len(t, seen, 3)

	// without a delta callback the non-streaming path is used
	text, _, err = Complete(context.Background(), rt, userReq("m"), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOllamaStream(t *testing.T) {
	srv := newLocalServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, part := range []string{"// src/", "app.js\n", "run()"} {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":false}`+"\n", part)
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	var sb strings.Builder
	require.NoError(t, c.GenerateStream(context.Background(), userReq("llama3"), func(d string) { sb.WriteString(d) }))
	assert.Equal(t, "// src/app.js\nrun()", sb.String())
}
