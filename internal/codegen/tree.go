package codegen

import (
	"sort"
	"strings"
)

// NodeType distinguishes directories from files in a tree.
type NodeType string

const (
	NodeDirectory NodeType = "directory"
	NodeFile      NodeType = "file"
)

// TreeNode is a directory or file in the display hierarchy built from a list
// of file records. Directory nodes carry Children; file nodes carry File.
type TreeNode struct {
	Type     NodeType             `json:"type"`
	Name     string               `json:"name"`
	Children map[string]*TreeNode `json:"children,omitempty"`
	File     *FileRecord          `json:"file,omitempty"`
}

func newDir(name string) *TreeNode {
	return &TreeNode{Type: NodeDirectory, Name: name, Children: map[string]*TreeNode{}}
}

// IsDir reports whether n is a directory node.
func (n *TreeNode) IsDir() bool { return n != nil && n.Type == NodeDirectory }

// BuildTree indexes files into a directory tree rooted at an unnamed
// directory. Directories are created on first use and reused afterwards.
// A later record with an already-seen path replaces the earlier one. When a
// path is needed both as a file and as a directory, the directory is kept.
func BuildTree(files []FileRecord) *TreeNode {
	root := newDir("")
	for i := range files {
		f := files[i]
		segs := splitPath(f.Path)
		if len(segs) == 0 {
			continue
		}
		dir := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := dir.Children[seg]
			if !ok || !child.IsDir() {
				child = newDir(seg)
				dir.Children[seg] = child
			}
			dir = child
		}
		leaf := segs[len(segs)-1]
		if existing, ok := dir.Children[leaf]; ok && existing.IsDir() {
			continue
		}
		dir.Children[leaf] = &TreeNode{Type: NodeFile, Name: leaf, File: &f}
	}
	return root
}

func splitPath(p string) []string {
	raw := strings.Split(p, "/")
	segs := raw[:0]
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

// SortedChildren returns the children of n with directories first and
// each group ordered by name.
func (n *TreeNode) SortedChildren() []*TreeNode {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	out := make([]*TreeNode, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir() != out[j].IsDir() {
			return out[i].IsDir()
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Walk visits every node below n depth-first in presentation order. The
// callback receives the slash-joined path of the node and its depth, where
// direct children of n are at depth 0.
func (n *TreeNode) Walk(fn func(path string, depth int, node *TreeNode)) {
	n.walk("", 0, fn)
}

func (n *TreeNode) walk(prefix string, depth int, fn func(string, int, *TreeNode)) {
	for _, c := range n.SortedChildren() {
		p := c.Name
		if prefix != "" {
			p = prefix + "/" + c.Name
		}
		fn(p, depth, c)
		if c.IsDir() {
			c.walk(p, depth+1, fn)
		}
	}
}

// Find returns the node at path p below n, or nil.
func (n *TreeNode) Find(p string) *TreeNode {
	cur := n
	for _, seg := range splitPath(p) {
		if !cur.IsDir() {
			return nil
		}
		next, ok := cur.Children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Files returns the file records reachable from n in presentation order.
func (n *TreeNode) Files() []FileRecord {
	var out []FileRecord
	n.Walk(func(_ string, _ int, node *TreeNode) {
		if node.File != nil {
			out = append(out, *node.File)
		}
	})
	return out
}
