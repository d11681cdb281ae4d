// Package embedded carries the seed fixtures compiled into the binary.
package embedded

import (
	"embed"
	"fmt"
	"path"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/goccy/go-yaml"
)

// FS embeds the seed yaml files.
//
//go:embed seed/*.yaml
var FS embed.FS

const seedDir = "seed"

// Seed is the fixture data written to empty collections.
type Seed struct {
	Courses    []catalogs.Course
	Teachers   []catalogs.Teacher
	Categories []string
}

// Load parses every embedded fixture.
func Load() (Seed, error) {
	var s Seed
	if err := decode("courses.yaml", &s.Courses); err != nil {
		return Seed{}, err
	}
	if err := decode("teachers.yaml", &s.Teachers); err != nil {
		return Seed{}, err
	}
	if err := decode("categories.yaml", &s.Categories); err != nil {
		return Seed{}, err
	}
	for i, c := range s.Courses {
		if c.ID == "" {
			return Seed{}, errors.NewParseError("yaml", "courses.yaml", fmt.Sprintf("course at index %d has no id", i), nil)
		}
	}
	for i, t := range s.Teachers {
		if t.ID == "" {
			return Seed{}, errors.NewParseError("yaml", "teachers.yaml", fmt.Sprintf("teacher at index %d has no id", i), nil)
		}
	}
	return s, nil
}

func decode(name string, out any) error {
	data, err := FS.ReadFile(path.Join(seedDir, name))
	if err != nil {
		return errors.WrapParse("yaml", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.WrapParse("yaml", name, err)
	}
	return nil
}
