package parser

import (
	"regexp"
	"strings"
)

// htmlCommentRe matches editor-only notes such as "<!-- TODO: index -->".
var htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

// markdownParser reads design notes and ER descriptions written in Markdown.
type markdownParser struct{}

func (markdownParser) Kind() string { return "markdown" }

func (markdownParser) CanParse(filename string) bool {
	return hasExt(filename, ".md", ".markdown")
}

func (markdownParser) Parse(content []byte) (string, error) {
	text := htmlCommentRe.ReplaceAllString(normalizeNewlines(string(content)), "")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text, nil
}
