package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
	"github.com/KaramelBytes/codeloom-cli/internal/parser"
	"github.com/KaramelBytes/codeloom-cli/internal/stack"
	"github.com/KaramelBytes/codeloom-cli/internal/utils"
)

const (
	projectFileName = "project.json"
	// maxGenerations bounds the history kept in project.json.
	maxGenerations = 20
)

// ErrNoGenerations is returned when a project has never been generated.
var ErrNoGenerations = errors.New("no generations yet; run 'codeloom generate' first")

// Project represents a CodeLoom project persisted on disk.
type Project struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Instructions string               `json:"instructions"`
	Documents    map[string]*Document `json:"documents"`
	Stack        stack.Selection      `json:"stack"`
	Config       *ProjectConfig       `json:"config"`
	Generations  []*Generation        `json:"generations"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

type ProjectConfig struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Documents:   make(map[string]*Document),
		Stack:       stack.Default,
		// Leave Config fields empty to inherit from global defaults unless explicitly set per project.
		Config:    &ProjectConfig{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, projectFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Stack.Language == "" {
		p.Stack = stack.Default
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureProjectDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, projectFileName), data)
}

// AddDocument reads a schema file and adds it to the project metadata and cache.
func (p *Project) AddDocument(path, description string) (*Document, error) {
	parsed, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	d := &Document{
		ID:          uuid.NewString(),
		Path:        path,
		Name:        filepath.Base(path),
		Kind:        parser.KindOf(path),
		Description: description,
		Content:     parsed,
		Tokens:      parser.EstimateTokens(parsed),
		AddedAt:     info.ModTime(),
	}
	if p.Documents == nil {
		p.Documents = make(map[string]*Document)
	}
	p.Documents[d.ID] = d
	p.UpdatedAt = time.Now()
	return d, nil
}

// SetInstructions replaces the extra requirements sent with every generation.
func (p *Project) SetInstructions(instructions string) {
	p.Instructions = strings.TrimSpace(instructions)
	p.UpdatedAt = time.Now()
}

// AppendInstructions adds a requirement on its own line.
func (p *Project) AppendInstructions(more string) {
	more = strings.TrimSpace(more)
	if more == "" {
		return
	}
	if p.Instructions == "" {
		p.SetInstructions(more)
		return
	}
	p.SetInstructions(p.Instructions + "\n" + more)
}

// SetStack validates and stores the target stack.
func (p *Project) SetStack(s stack.Selection) error {
	s = stack.Normalize(s)
	if err := stack.Validate(s); err != nil {
		return err
	}
	p.Stack = s
	p.UpdatedAt = time.Now()
	return nil
}

// RecordGeneration parses a raw model response and appends it to the
// history. An empty parse result is still recorded so the raw text can be
// inspected.
func (p *Project) RecordGeneration(model, requestID, raw string) *Generation {
	g := &Generation{
		ID:        uuid.NewString(),
		Model:     model,
		Stack:     p.Stack.String(),
		RequestID: requestID,
		Raw:       raw,
		Files:     codegen.Parse(raw),
		CreatedAt: time.Now(),
	}
	p.Generations = append(p.Generations, g)
	if n := len(p.Generations); n > maxGenerations {
		p.Generations = p.Generations[n-maxGenerations:]
	}
	p.UpdatedAt = time.Now()
	return g
}

// LatestGeneration returns the most recent generation.
func (p *Project) LatestGeneration() (*Generation, error) {
	if len(p.Generations) == 0 {
		return nil, ErrNoGenerations
	}
	return p.Generations[len(p.Generations)-1], nil
}

// Generation looks up a generation by ID or unique ID prefix. An empty id
// selects the latest one.
func (p *Project) Generation(id string) (*Generation, error) {
	if id == "" {
		return p.LatestGeneration()
	}
	var found *Generation
	for _, g := range p.Generations {
		if strings.HasPrefix(g.ID, id) {
			if found != nil {
				return nil, fmt.Errorf("generation id %q is ambiguous", id)
			}
			found = g
		}
	}
	if found == nil {
		return nil, fmt.Errorf("generation %q not found", id)
	}
	return found, nil
}

// SortedDocuments returns documents ordered by name, then ID.
func (p *Project) SortedDocuments() []*Document {
	docs := make([]*Document, 0, len(p.Documents))
	for _, d := range p.Documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Name != docs[j].Name {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}
