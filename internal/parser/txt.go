package parser

import "strings"

// txtParser reads free-form notes and drops trailing whitespace.
type txtParser struct{}

func (txtParser) Kind() string { return "text" }

func (txtParser) CanParse(filename string) bool {
	return hasExt(filename, ".txt")
}

func (txtParser) Parse(content []byte) (string, error) {
	lines := strings.Split(normalizeNewlines(string(content)), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), nil
}
