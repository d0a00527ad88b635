package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonParser accepts diagram exports (tables/relations as JSON) and
// re-indents them so the prompt stays readable.
type jsonParser struct{}

func (jsonParser) Kind() string { return "json" }

func (jsonParser) CanParse(filename string) bool {
	return hasExt(filename, ".json")
}

func (jsonParser) Parse(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(content), "", "  "); err != nil {
		return "", fmt.Errorf("parse json schema: %w", err)
	}
	return buf.String(), nil
}
