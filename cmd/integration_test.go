package cmd

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
	"github.com/KaramelBytes/codeloom-cli/internal/project"
)

const cannedResponse = "Here is your backend.\n\n" +
	"// src/app.js\n```javascript\nconst express = require('express');\nmodule.exports = express();\n```\n\n" +
	"// src/models/user.js\n```js\nmodule.exports = (sequelize) => sequelize.define('User', {});\n```\n\n" +
	"# migrations/001_init.sql\n```sql\nCREATE TABLE users (id SERIAL PRIMARY KEY);\n```\n\n" +
	"// README.md\n# Shop API\n"

// resetFlags restores every flag to its default so in-process runs do not
// leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command in-process and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd executes args and fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	require.NoError(t, err, "command %v", args)
	return out
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CODELOOM_API_BASE_URL", "")
	return home
}

func writeSchema(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "shop.sql")
	ddl := "-- shop schema\nCREATE TABLE users (\n  id SERIAL PRIMARY KEY,\n  email TEXT NOT NULL\n);\n"
	require.NoError(t, os.WriteFile(path, []byte(ddl), 0o644))
	return path
}

func fakeOpenRouter(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "req-123")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "gen-1",
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCLI_Init_Add_Stack_GenerateDryRun(t *testing.T) {
	home := setupHome(t)
	schema := writeSchema(t, home)

	out := runCmd(t, "init", "dry", "-d", "integration test")
	assert.Contains(t, out, "Project initialized")
	out = runCmd(t, "add", "-p", "dry", schema, "--desc", "core tables")
	assert.Contains(t, out, "Schema added: shop.sql")
	runCmd(t, "stack", "set", "-p", "dry", "--language", "python", "--framework", "fastapi", "--orm", "sqlalchemy", "--database", "postgresql")
	runCmd(t, "instruct", "-p", "dry", "Add pagination to list endpoints")

	out = runCmd(t, "generate", "-p", "dry", "--dry-run")
	assert.Contains(t, out, "--dry-run")
	assert.Contains(t, out, "[SCHEMA]")
	assert.Contains(t, out, "CREATE TABLE users")
	assert.Contains(t, out, "fastapi")
	assert.Contains(t, out, "Add pagination")

	out = runCmd(t, "list", "--generations", "-p", "dry")
	assert.Contains(t, out, "(no generations)")
}

func TestCLI_GenerateBrowseExport(t *testing.T) {
	home := setupHome(t)
	srv := fakeOpenRouter(t, cannedResponse)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("CODELOOM_API_BASE_URL", srv.URL)

	runCmd(t, "init", "shop")
	runCmd(t, "add", "-p", "shop", writeSchema(t, home))

	out := runCmd(t, "generate", "-p", "shop")
	assert.Contains(t, out, "Generated 4 files")
	assert.Contains(t, out, "Request ID: req-123")
	assert.Contains(t, out, "user.js")

	out = runCmd(t, "files", "tree", "-p", "shop", "--languages")
	assert.Contains(t, out, "migrations")
	assert.Contains(t, out, "001_init.sql")
	assert.Less(t, strings.Index(out, "src"), strings.Index(out, "README.md"), "directories are listed before files")

	out = runCmd(t, "files", "show", "-p", "shop", "src/app.js", "--raw")
	assert.Equal(t, "const express = require('express');\nmodule.exports = express();\n", out)

	out = runCmd(t, "files", "show", "-p", "shop", "migrations/001_init.sql", "--style", "notty")
	assert.Contains(t, out, "CREATE TABLE users")

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })
	out = runCmd(t, "files", "copy", "-p", "shop", "README.md")
	assert.Contains(t, out, "Copied README.md")
	assert.Equal(t, "# Shop API", copied)

	_, err := execute(t, "", "files", "show", "-p", "shop", "src/missing.js")
	require.Error(t, err)
	_, err = execute(t, "", "files", "show", "-p", "shop", "src")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	out = runCmd(t, "files", "raw", "-p", "shop")
	assert.Contains(t, out, "Here is your backend.")

	zipPath := filepath.Join(home, "shop.zip")
	out = runCmd(t, "export", "-p", "shop", "--zip", zipPath)
	assert.Contains(t, out, "Wrote 4 files")
	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.NoError(t, zr.Close())
	assert.Equal(t, []string{"src/app.js", "src/models/user.js", "migrations/001_init.sql", "README.md"}, names)

	outDir := filepath.Join(home, "out")
	runCmd(t, "export", "-p", "shop", "--dir", outDir)
	b, err := os.ReadFile(filepath.Join(outDir, "migrations", "001_init.sql"))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE users (id SERIAL PRIMARY KEY);\n", string(b))

	_, err = execute(t, "", "export", "-p", "shop", "--dir", outDir)
	require.Error(t, err, "existing files need --force")
	runCmd(t, "export", "-p", "shop", "--dir", outDir, "--force")

	out = runCmd(t, "list", "--generations", "-p", "shop")
	assert.Contains(t, out, "openai/gpt-4o-mini")
	assert.Contains(t, out, "javascript/express/sequelize/postgresql")
}

func TestCLI_GenerateReportsAuthHint(t *testing.T) {
	home := setupHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENROUTER_API_KEY", "wrong")
	t.Setenv("CODELOOM_API_BASE_URL", srv.URL)

	runCmd(t, "init", "auth")
	runCmd(t, "add", "-p", "auth", writeSchema(t, home))
	_, err := execute(t, "", "generate", "-p", "auth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestCLI_ParseFromStdin(t *testing.T) {
	setupHome(t)

	out, err := execute(t, cannedResponse, "parse", "--json")
	require.NoError(t, err)
	var recs []codegen.FileRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 4)
	assert.Equal(t, "src/models/user.js", recs[1].Path)
	assert.Equal(t, codegen.LangSQL, recs[2].Language)

	out, err = execute(t, cannedResponse, "parse", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "app.js")

	out, err = execute(t, "no headers here", "parse")
	require.NoError(t, err)
	assert.Contains(t, out, "No files found")
}

func TestCLI_ParseCollapsesDuplicates(t *testing.T) {
	setupHome(t)
	path := filepath.Join(t.TempDir(), "resp.txt")
	require.NoError(t, os.WriteFile(path, []byte("// a.js\nold\n// a.js\nnew\n"), 0o644))

	out := runCmd(t, "parse", path)
	assert.Contains(t, out, "1 duplicate path(s) collapsed")

	out = runCmd(t, "parse", path, "--json", "--first-wins")
	var recs []codegen.FileRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "old", recs[0].Content)
}

func TestCLI_ProjectSettingsFeedGenerate(t *testing.T) {
	home := setupHome(t)
	runCmd(t, "init", "cfgd")
	runCmd(t, "add", "-p", "cfgd", writeSchema(t, home))

	out := runCmd(t, "list", "--docs", "-p", "cfgd")
	assert.Contains(t, out, "shop.sql")
	assert.Contains(t, out, "sql")

	runCmd(t, "project", "set-model", "-p", "cfgd", "anthropic/claude-3.5-sonnet")
	runCmd(t, "project", "set-params", "-p", "cfgd", "--max-tokens", "16000")
	_, err := execute(t, "", "project", "set-params", "-p", "cfgd")
	require.Error(t, err)

	runCmd(t, "instruct", "-p", "cfgd", "Use JWT auth")
	runCmd(t, "instruct", "-p", "cfgd", "--append", "Paginate list endpoints")
	_, err = execute(t, "", "instruct", "-p", "cfgd")
	require.Error(t, err)

	out = runCmd(t, "generate", "-p", "cfgd", "--dry-run")
	assert.Contains(t, out, "model=anthropic/claude-3.5-sonnet")
	assert.Contains(t, out, "Use JWT auth\nPaginate list endpoints")

	runCmd(t, "project", "set-model", "-p", "cfgd", "--clear")
	runCmd(t, "instruct", "-p", "cfgd", "--clear")
	out = runCmd(t, "generate", "-p", "cfgd", "--dry-run")
	assert.Contains(t, out, "model=openai/gpt-4o-mini")
	assert.NotContains(t, out, "Use JWT auth")
}

func TestCLI_StackListAndShow(t *testing.T) {
	setupHome(t)
	out := runCmd(t, "stack", "list")
	assert.Contains(t, out, "fastapi")
	assert.Contains(t, out, "typescript")

	runCmd(t, "init", "stk", "--language", "typescript")
	out = runCmd(t, "stack", "show", "-p", "stk")
	assert.Contains(t, out, "language: typescript")

	_, err := execute(t, "", "stack", "set", "-p", "stk", "--language", "python", "--framework", "express")
	require.Error(t, err)
}

func TestCLI_ExportRequiresOneTarget(t *testing.T) {
	setupHome(t)
	runCmd(t, "init", "exp")
	_, err := execute(t, "", "export", "-p", "exp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --zip or --dir")
	_, err = execute(t, "", "export", "-p", "exp", "--zip", "a.zip")
	require.ErrorIs(t, err, project.ErrNoGenerations)
}
