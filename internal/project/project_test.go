package project_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
	"github.com/KaramelBytes/codeloom-cli/internal/project"
	"github.com/KaramelBytes/codeloom-cli/internal/stack"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestBuildPromptIncludesSchemaAndStack(t *testing.T) {
	tdir := t.TempDir()
	ddl := writeFile(t, tdir, "schema.sql", "-- tables\nCREATE TABLE users (id INT);")
	notes := writeFile(t, tdir, "notes.md", "# Notes\n\nUsers have emails.")

	proj := project.NewProject("test", "", filepath.Join(tdir, "proj"))
	proj.SetInstructions("  Add pagination  ")
	require.NoError(t, proj.SetStack(stack.Selection{Language: "python"}))
	_, err := proj.AddDocument(ddl, "ddl")
	require.NoError(t, err)
	_, err = proj.AddDocument(notes, "")
	require.NoError(t, err)

	prompt, tokens, err := proj.BuildPrompt()
	require.NoError(t, err)
	assert.Positive(t, tokens)
	for _, want := range []string{"schema.sql [sql] (ddl)", "notes.md [markdown]", "[STACK]", "Framework: fastapi", "[SCHEMA]", "CREATE TABLE users", "Users have emails.", "[OUTPUT FORMAT]", "[TASK]", "Add pagination"} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "-- tables")
	// documents are ordered by name
	assert.Less(t, strings.Index(prompt, "notes.md"), strings.Index(prompt, "schema.sql"))
}

func TestBuildPromptWarnsAgainstOneWordComments(t *testing.T) {
	tdir := t.TempDir()
	proj := project.NewProject("test", "", filepath.Join(tdir, "proj"))
	_, err := proj.AddDocument(writeFile(t, tdir, "schema.sql", "CREATE TABLE t (id INT);"), "")
	require.NoError(t, err)

	prompt, _, err := proj.BuildPrompt()
	require.NoError(t, err)
	assert.Contains(t, prompt, "never put a one-word comment")
}

func TestBuildPromptRequiresDocuments(t *testing.T) {
	_, _, err := project.NewProject("x", "", t.TempDir()).BuildPrompt()
	require.Error(t, err)
}

func TestSetStackRejectsInvalid(t *testing.T) {
	p := project.NewProject("x", "", t.TempDir())
	require.Error(t, p.SetStack(stack.Selection{Language: "python", Framework: "express"}))
	assert.Equal(t, stack.Default, p.Stack)
}

func TestRecordGenerationAndPersist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	p := project.NewProject("gen", "desc", dir)

	_, err := p.LatestGeneration()
	require.ErrorIs(t, err, project.ErrNoGenerations)

	g := p.RecordGeneration("m", "req-1", "// package.json\n{}\n// src/app.js\nrun()")
	require.Len(t, g.Files, 2)
	assert.Equal(t, stack.Default.String(), g.Stack)
	require.NoError(t, p.Save())

	loaded, err := project.LoadProject(dir)
	require.NoError(t, err)
	latest, err := loaded.LatestGeneration()
	require.NoError(t, err)
	assert.Equal(t, g.ID, latest.ID)
	assert.Equal(t, g.Files, latest.Files)
	assert.Equal(t, codegen.LangJavaScript, latest.Tree().Find("src/app.js").File.Language)

	byPrefix, err := loaded.Generation(g.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, g.ID, byPrefix.ID)
	_, err = loaded.Generation("does-not-exist")
	require.Error(t, err)
}

func TestRecordGenerationBoundsHistory(t *testing.T) {
	p := project.NewProject("gen", "", t.TempDir())
	var last *project.Generation
	for i := 0; i < 25; i++ {
		last = p.RecordGeneration("m", "", "// a.js\nx")
	}
	assert.Len(t, p.Generations, 20)
	latest, err := p.LatestGeneration()
	require.NoError(t, err)
	assert.Same(t, last, latest)
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := project.LoadProject(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project not found")
}
