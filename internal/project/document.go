package project

import "time"

// Document is a schema source added to a project. Content holds the parsed
// text that goes into the prompt; Path is kept for reference only.
type Document struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Tokens      int       `json:"tokens"`
	AddedAt     time.Time `json:"added_at"`
}

// Label is the heading used for d inside a prompt.
func (d *Document) Label() string {
	s := d.Name
	if d.Kind != "" {
		s += " [" + d.Kind + "]"
	}
	if d.Description != "" {
		s += " (" + d.Description + ")"
	}
	return s
}
