package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/codeloom-cli/internal/parser"
)

func TestParseFileTXT(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("users have many orders  \r\norders belong to users\n\n"), 0o644))

	out, err := parser.ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, "users have many orders\norders belong to users", out)
}

func TestParseFileMissing(t *testing.T) {
	_, err := parser.ParseFile(filepath.Join(t.TempDir(), "absent.sql"))
	assert.Error(t, err)
}

func TestParseMarkdownDropsCommentsAndBlankRuns(t *testing.T) {
	in := "# Shop\n\n\n\n<!-- draft:\nrevisit -->Users place orders.\n"
	out, err := parser.ParseBytes("design.md", []byte(in))
	require.NoError(t, err)
	assert.Equal(t, "# Shop\n\nUsers place orders.\n", out)
}

func TestParseSQLDropsComments(t *testing.T) {
	in := "-- users table\nCREATE TABLE users (\n  id SERIAL PRIMARY KEY,   \n\n  email TEXT\n);\n"
	out, err := parser.ParseBytes("schema.SQL", []byte(in))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE users (\n  id SERIAL PRIMARY KEY,\n  email TEXT\n);", out)
}

func TestParseJSONIndents(t *testing.T) {
	out, err := parser.ParseBytes("diagram.json", []byte(`{"tables":[{"name":"users"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"tables\": [\n    {\n      \"name\": \"users\"\n    }\n  ]\n}", out)

	_, err = parser.ParseBytes("bad.json", []byte(`{"tables":`))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	out, err := parser.ParseBytes("schema.yml", []byte("tables:\n  - users\n"))
	require.NoError(t, err)
	assert.Equal(t, "tables:\n  - users", out)

	_, err = parser.ParseBytes("bad.yaml", []byte("a: [1, 2\n"))
	assert.Error(t, err)
}

func TestParseEmptyAndFallback(t *testing.T) {
	_, err := parser.ParseBytes("a.sql", []byte("  \n"))
	assert.ErrorIs(t, err, parser.ErrEmpty)

	out, err := parser.ParseBytes("schema.prisma", []byte("model User {}\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "model User {}\n", out)
}

func TestKindOf(t *testing.T) {
	cases := map[string]string{
		"shop.sql":      "sql",
		"init.DDL":      "sql",
		"diagram.json":  "json",
		"schema.yml":    "yaml",
		"README.md":     "markdown",
		"notes.txt":     "text",
		"schema.prisma": "text",
	}
	for name, want := range cases {
		assert.Equal(t, want, parser.KindOf(name), name)
	}
}
