package parser

import "strings"

// sqlParser keeps DDL statements and drops comment-only and blank lines.
type sqlParser struct{}

func (sqlParser) Kind() string { return "sql" }

func (sqlParser) CanParse(filename string) bool {
	return hasExt(filename, ".sql", ".ddl")
}

func (sqlParser) Parse(content []byte) (string, error) {
	lines := strings.Split(normalizeNewlines(string(content)), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" || strings.HasPrefix(t, "--") {
			continue
		}
		out = append(out, strings.TrimRight(l, " \t"))
	}
	return strings.Join(out, "\n"), nil
}
