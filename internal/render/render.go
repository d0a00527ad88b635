// Package render prints generated file trees and file contents for the
// terminal.
package render

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-enry/go-enry/v2"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
)

var (
	dirStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fileStyle = lipgloss.NewStyle()
	langStyle = lipgloss.NewStyle().Faint(true)
)

// TreeOptions controls Tree output.
type TreeOptions struct {
	RootLabel     string
	ShowLanguages bool
}

// Tree writes root as an indented tree, directories first.
func Tree(w io.Writer, root *codegen.TreeNode, opts TreeOptions) error {
	label := opts.RootLabel
	if label == "" {
		label = "."
	}
	if _, err := fmt.Fprintln(w, dirStyle.Render(label)); err != nil {
		return err
	}
	return writeChildren(w, root, "", opts)
}

func writeChildren(w io.Writer, n *codegen.TreeNode, indent string, opts TreeOptions) error {
	children := n.SortedChildren()
	for i, c := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		line := fileStyle.Render(c.Name)
		if c.IsDir() {
			line = dirStyle.Render(c.Name + "/")
		} else if opts.ShowLanguages && c.File != nil {
			line += " " + langStyle.Render("("+string(c.File.Language)+")")
		}
		if _, err := fmt.Fprintln(w, indent+branch+line); err != nil {
			return err
		}
		if c.IsDir() {
			if err := writeChildren(w, c, indent+next, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// FileOptions controls File output.
type FileOptions struct {
	// Style is a glamour standard style name; empty selects the terminal's.
	Style    string
	WordWrap int
}

// File renders a single file with a path heading and syntax highlighting.
func File(rec codegen.FileRecord, opts FileOptions) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" {
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}
	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 120
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return "", fmt.Errorf("init renderer: %w", err)
	}
	out, err := r.Render(Markdown(rec))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rec.Path, err)
	}
	return out, nil
}

// Markdown wraps rec in a fenced block tagged for the highlighter.
func Markdown(rec codegen.FileRecord) string {
	fence := fenceFor(rec.Content)
	var sb strings.Builder
	sb.WriteString("### " + rec.Path + "\n\n")
	sb.WriteString(fence + lexerName(rec) + "\n")
	sb.WriteString(rec.Content)
	sb.WriteString("\n" + fence + "\n")
	return sb.String()
}

// lexerName picks the highlighter for rec. Files outside the extension
// table (Dockerfile, .go, .rb, ...) are classified by go-enry instead.
func lexerName(rec codegen.FileRecord) string {
	if rec.Language != codegen.LangPlaintext {
		return string(rec.Language)
	}
	switch lang := enry.GetLanguage(path.Base(rec.Path), []byte(rec.Content)); lang {
	case enry.OtherLanguage, "Text":
		return "text"
	default:
		return strings.ToLower(lang)
	}
}

// fenceFor returns a backtick fence longer than any run inside content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
