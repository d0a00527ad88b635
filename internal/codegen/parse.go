package codegen

import (
	"regexp"
	"strings"
)

var (
	// headerRe matches a single-line comment at column zero.
	headerRe = regexp.MustCompile(`^(?://|#)[ \t]*(.*?)[ \t]*$`)
	// pathTokenRe is the accepted shape of a declared file path.
	pathTokenRe = regexp.MustCompile(`^[A-Za-z0-9_.\-/@+\[\]]+$`)
	// fenceRe matches a fence delimiter line with an optional language hint.
	fenceRe = regexp.MustCompile("^[ \t]*```[A-Za-z0-9_+.#-]*[ \t]*$")
)

// Parse splits a generated response into file records. Each file starts at a
// line such as "// src/app.js" or "# app/main.py" and runs until the next
// header or the end of input. Text before the first header is ignored, as are
// sections whose body is empty after cleanup.
//
// Parse never fails: malformed input yields fewer records, possibly none.
func Parse(text string) []FileRecord {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	files := []FileRecord{}
	var (
		current string
		body    []string
		open    bool
	)
	flush := func() {
		if !open {
			return
		}
		if content := cleanBody(strings.Join(body, "\n")); content != "" {
			files = append(files, NewFileRecord(current, content))
		}
	}
	for _, line := range lines {
		if p, ok := headerPath(line); ok {
			flush()
			current, body, open = p, body[:0], true
			continue
		}
		if open {
			body = append(body, line)
		}
	}
	flush()
	return files
}

// headerPath reports whether line opens a new file section and returns the
// declared path with empty and "." segments dropped, so "./src//app.js" and
// "src/app.js" name the same file. Multi-word comments without a path separator ("// Note: see
// below", "# Project Structure") are treated as prose.
func headerPath(line string) (string, bool) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	fields := strings.Fields(m[1])
	if len(fields) == 0 {
		return "", false
	}
	if len(fields) > 1 && !strings.Contains(m[1], "/") {
		return "", false
	}
	p := fields[0]
	if !pathTokenRe.MatchString(p) || strings.HasSuffix(p, "/") || strings.Trim(p, "/.") == "" {
		return "", false
	}
	return strings.Join(splitPath(p), "/"), true
}

// cleanBody trims the section and removes every fence line bounding it. A
// header written inside its fence leaves the previous block's closing fence
// and the next block's opening fence stacked at the end of a section.
func cleanBody(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for len(lines) > 0 {
		switch {
		case strings.TrimSpace(lines[0]) == "" || fenceRe.MatchString(lines[0]):
			lines = lines[1:]
		case strings.TrimSpace(lines[len(lines)-1]) == "" || fenceRe.MatchString(lines[len(lines)-1]):
			lines = lines[:len(lines)-1]
		default:
			return strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}
	return ""
}
