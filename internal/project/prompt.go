package project

import (
	"errors"
	"strings"

	"github.com/KaramelBytes/codeloom-cli/internal/utils"
)

// outputFormat tells the model how to lay out files so codegen.Parse can
// split them again.
const outputFormat = `Return every file of the project one after another.
Start each file with a single comment line holding only its relative path,
for example "// src/app.js" or "# app/main.py", then the file content.
Do not add prose between files and do not repeat a path.
Inside a file, never put a one-word comment such as "// Routes" or
"# helpers" at the start of a line; indent it or use more words, since a
line like that starts a new file.`

// BuildPrompt assembles the final prompt text and returns the text with total token estimate.
func (p *Project) BuildPrompt() (string, int, error) {
	if p == nil {
		return "", 0, errors.New("project is nil")
	}
	if len(p.Documents) == 0 {
		return "", 0, errors.New("no schema documents added to project")
	}

	var sb strings.Builder
	sb.WriteString("[STACK]\n")
	sb.WriteString("Language: " + p.Stack.Language + "\n")
	sb.WriteString("Framework: " + p.Stack.Framework + "\n")
	sb.WriteString("ORM: " + p.Stack.ORM + "\n")
	sb.WriteString("Database: " + p.Stack.Database + "\n\n")

	sb.WriteString("[SCHEMA]\n")
	for _, d := range p.SortedDocuments() {
		sb.WriteString("--- Schema: " + d.Label() + " ---\n")
		sb.WriteString(d.Content)
		sb.WriteString("\n\n")
	}

	sb.WriteString("[OUTPUT FORMAT]\n")
	sb.WriteString(outputFormat)
	sb.WriteString("\n\n")

	sb.WriteString("[TASK]\n")
	sb.WriteString("Generate a complete, runnable backend for the schema above using the stack above: ")
	sb.WriteString("models, routes/controllers with CRUD endpoints, database configuration, and a package manifest.")
	if p.Instructions != "" {
		sb.WriteString("\nAdditional requirements: ")
		sb.WriteString(p.Instructions)
	}
	sb.WriteString("\n")

	prompt := sb.String()
	return prompt, utils.CountTokens(prompt), nil
}
