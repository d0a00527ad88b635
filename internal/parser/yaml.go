package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlParser validates YAML schema descriptions and keeps them verbatim.
type yamlParser struct{}

func (yamlParser) Kind() string { return "yaml" }

func (yamlParser) CanParse(filename string) bool {
	return hasExt(filename, ".yaml", ".yml")
}

func (yamlParser) Parse(content []byte) (string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(content, &node); err != nil {
		return "", fmt.Errorf("parse yaml schema: %w", err)
	}
	return strings.TrimRight(normalizeNewlines(string(content)), "\n"), nil
}
