package project

import (
	"time"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
)

// Generation is one model response and the files parsed from it.
type Generation struct {
	ID        string               `json:"id"`
	Model     string               `json:"model"`
	Stack     string               `json:"stack"`
	RequestID string               `json:"request_id,omitempty"`
	Raw       string               `json:"raw"`
	Files     []codegen.FileRecord `json:"files"`
	CreatedAt time.Time            `json:"created_at"`
}

// Tree builds the display tree for the generation's files.
func (g *Generation) Tree() *codegen.TreeNode {
	return codegen.BuildTree(g.Files)
}
