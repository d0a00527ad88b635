// Package parser reads schema source documents (SQL DDL, diagram exports,
// notes) into normalized text that can be embedded in a generation prompt.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/codeloom-cli/internal/utils"
)

// Parser defines a schema document parser implementation.
type Parser interface {
	// Kind names the document format, e.g. "sql" or "markdown".
	Kind() string
	CanParse(filename string) bool
	Parse(content []byte) (string, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns parsed text content.
func ParseFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return ParseBytes(path, data)
}

// ParseBytes parses data as if it had been read from filename.
func ParseBytes(filename string, data []byte) (string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", ErrEmpty
	}
	for _, p := range registry {
		if p.CanParse(filename) {
			return p.Parse(data)
		}
	}
	// Fallback to plain text
	return normalizeNewlines(string(data)), nil
}

// KindOf reports the format filename would be parsed as. Unregistered
// extensions are read as "text".
func KindOf(filename string) string {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p.Kind()
		}
	}
	return "text"
}

// EstimateTokens delegates to utils.CountTokens for now.
func EstimateTokens(text string) int {
	return utils.CountTokens(text)
}

func init() {
	Register(txtParser{})
	Register(markdownParser{})
	Register(sqlParser{})
	Register(jsonParser{})
	Register(yamlParser{})
}

// ErrEmpty indicates a schema document with no content.
var ErrEmpty = errors.New("schema document is empty")

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
