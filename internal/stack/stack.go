// Package stack holds the static catalog of backend stacks a generation can
// target.
package stack

import (
	"fmt"
	"sort"
	"strings"
)

// Choices lists the valid choices for one backend language.
type Choices struct {
	Frameworks []string
	ORMs       []string
	Databases  []string
}

// Selection is the stack chosen for a project.
type Selection struct {
	Language  string `json:"language"`
	Framework string `json:"framework"`
	ORM       string `json:"orm"`
	Database  string `json:"database"`
}

var catalog = map[string]Choices{
	"javascript": {
		Frameworks: []string{"express", "fastify", "koa"},
		ORMs:       []string{"sequelize", "prisma", "mongoose", "knex"},
		Databases:  []string{"postgresql", "mysql", "sqlite", "mongodb"},
	},
	"typescript": {
		Frameworks: []string{"express", "nestjs", "fastify"},
		ORMs:       []string{"prisma", "typeorm", "drizzle", "mongoose"},
		Databases:  []string{"postgresql", "mysql", "sqlite", "mongodb"},
	},
	"python": {
		Frameworks: []string{"fastapi", "flask", "django"},
		ORMs:       []string{"sqlalchemy", "django-orm", "tortoise", "peewee"},
		Databases:  []string{"postgresql", "mysql", "sqlite"},
	},
}

// Default is used when a project has no selection yet.
var Default = Selection{Language: "javascript", Framework: "express", ORM: "sequelize", Database: "postgresql"}

// Languages returns the supported languages in sorted order.
func Languages() []string {
	out := make([]string, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Options returns the choices for lang.
func Options(lang string) (Choices, bool) {
	o, ok := catalog[strings.ToLower(strings.TrimSpace(lang))]
	return o, ok
}

// Normalize lower-cases every field and fills empty ones with the first
// option listed for the language.
func Normalize(s Selection) Selection {
	s.Language = strings.ToLower(strings.TrimSpace(s.Language))
	s.Framework = strings.ToLower(strings.TrimSpace(s.Framework))
	s.ORM = strings.ToLower(strings.TrimSpace(s.ORM))
	s.Database = strings.ToLower(strings.TrimSpace(s.Database))
	o, ok := catalog[s.Language]
	if !ok {
		return s
	}
	if s.Framework == "" {
		s.Framework = o.Frameworks[0]
	}
	if s.ORM == "" {
		s.ORM = o.ORMs[0]
	}
	if s.Database == "" {
		s.Database = o.Databases[0]
	}
	return s
}

// Validate checks that every field of s is a listed option for its language.
func Validate(s Selection) error {
	o, ok := Options(s.Language)
	if !ok {
		return fmt.Errorf("unsupported language %q (use %s)", s.Language, strings.Join(Languages(), "|"))
	}
	if !contains(o.Frameworks, s.Framework) {
		return fmt.Errorf("framework %q not available for %s (use %s)", s.Framework, s.Language, strings.Join(o.Frameworks, "|"))
	}
	if !contains(o.ORMs, s.ORM) {
		return fmt.Errorf("orm %q not available for %s (use %s)", s.ORM, s.Language, strings.Join(o.ORMs, "|"))
	}
	if !contains(o.Databases, s.Database) {
		return fmt.Errorf("database %q not available for %s (use %s)", s.Database, s.Language, strings.Join(o.Databases, "|"))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (s Selection) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.Language, s.Framework, s.ORM, s.Database)
}
