// Package codegen turns generated-code responses into virtual files and
// indexes them into a directory tree for display and export.
package codegen

import (
	"path"
	"strings"
)

// Language is the syntax tag attached to a generated file.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangJSON       Language = "json"
	LangSQL        Language = "sql"
	LangMarkdown   Language = "markdown"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangTypeScript Language = "typescript"
	LangXML        Language = "xml"
	LangYAML       Language = "yaml"
	LangINI        Language = "ini"
	LangPlaintext  Language = "plaintext"
)

// extLanguages maps lower-cased extensions (without dot) to a language tag.
var extLanguages = map[string]Language{
	"js":       LangJavaScript,
	"jsx":      LangJavaScript,
	"mjs":      LangJavaScript,
	"cjs":      LangJavaScript,
	"py":       LangPython,
	"json":     LangJSON,
	"sql":      LangSQL,
	"md":       LangMarkdown,
	"markdown": LangMarkdown,
	"html":     LangHTML,
	"htm":      LangHTML,
	"css":      LangCSS,
	"ts":       LangTypeScript,
	"tsx":      LangTypeScript,
	"xml":      LangXML,
	"yaml":     LangYAML,
	"yml":      LangYAML,
	"ini":      LangINI,
	"env":      LangINI,
	"cfg":      LangINI,
}

// LanguageFor classifies a file path by its extension. Unknown or missing
// extensions map to LangPlaintext.
func LanguageFor(p string) Language {
	ext := strings.TrimPrefix(path.Ext(baseName(p)), ".")
	if lang, ok := extLanguages[strings.ToLower(ext)]; ok {
		return lang
	}
	return LangPlaintext
}

// FileRecord is one file extracted from a generated response.
type FileRecord struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Content  string   `json:"content"`
	Language Language `json:"language"`
}

// NewFileRecord derives the identity, name and language from p.
func NewFileRecord(p, content string) FileRecord {
	return FileRecord{
		ID:       p,
		Path:     p,
		Name:     baseName(p),
		Content:  content,
		Language: LanguageFor(p),
	}
}

func baseName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// DuplicatePolicy decides which record survives when paths repeat.
type DuplicatePolicy int

const (
	LastWins DuplicatePolicy = iota
	FirstWins
)

// Dedupe returns files with one record per path. Surviving records keep the
// relative order of their own positions in the input.
func Dedupe(files []FileRecord, policy DuplicatePolicy) []FileRecord {
	keep := make(map[string]int, len(files))
	for i, f := range files {
		if _, seen := keep[f.Path]; seen && policy == FirstWins {
			continue
		}
		keep[f.Path] = i
	}
	out := make([]FileRecord, 0, len(keep))
	for i, f := range files {
		if keep[f.Path] == i {
			out = append(out, f)
		}
	}
	return out
}
