package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sprintlens/internal/aggregate"
	"sprintlens/internal/testrun"
)

// Manifest lists a project's sprints in chronological order with the report
// files uploaded to each.
type Manifest struct {
	Project string           `yaml:"project" json:"project"`
	Sprints []ManifestSprint `yaml:"sprints" json:"sprints"`

	dir string
}

// ManifestSprint is one sprint entry. Dates use YYYY-MM-DD.
type ManifestSprint struct {
	ID      string           `yaml:"id" json:"id"`
	Name    string           `yaml:"name" json:"name"`
	Start   string           `yaml:"start" json:"start"`
	End     string           `yaml:"end" json:"end"`
	Reports []ManifestReport `yaml:"reports" json:"reports"`
}

// ManifestReport is one uploaded file of a sprint.
type ManifestReport struct {
	Path     string `yaml:"path" json:"path"`
	Status   string `yaml:"status" json:"status"`
	Uploaded string `yaml:"uploaded" json:"uploaded"`
}

// LoadManifest reads a manifest file (YAML or JSON). Report paths are
// resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest parses manifest bytes; ext is a format hint, empty means
// detect from content.
func ParseManifest(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	ext = strings.ToLower(ext)
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}
	if ext == ".json" {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest yaml: %w", err)
	}
	for i, s := range m.Sprints {
		if strings.TrimSpace(s.Name) == "" && strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("manifest sprint %d: needs an id or a name", i)
		}
	}
	return &m, nil
}

// SprintInputs loads every report the manifest references and returns the
// sprints in manifest order. Unreadable files are returned in Failed and
// left out of their sprint.
func (m *Manifest) SprintInputs(ctx context.Context, l Loader) ([]aggregate.SprintInput, []FileError, error) {
	type span struct{ from, to int }
	var refs []FileRef
	spans := make([]span, len(m.Sprints))
	inputs := make([]aggregate.SprintInput, len(m.Sprints))

	for i, s := range m.Sprints {
		start, err := parseDate(s.Start)
		if err != nil {
			return nil, nil, fmt.Errorf("sprint %q start: %w", s.label(), err)
		}
		end, err := parseDate(s.End)
		if err != nil {
			return nil, nil, fmt.Errorf("sprint %q end: %w", s.label(), err)
		}
		inputs[i] = aggregate.SprintInput{SprintID: s.ID, Name: s.label(), StartDate: start, EndDate: end}

		spans[i].from = len(refs)
		for _, r := range s.Reports {
			uploaded, err := parseDate(r.Uploaded)
			if err != nil {
				return nil, nil, fmt.Errorf("sprint %q report %s uploaded: %w", s.label(), r.Path, err)
			}
			path := m.resolve(r.Path)
			refs = append(refs, FileRef{
				Path: path,
				Meta: testrun.Meta{
					FileID:      path,
					FileName:    filepath.Base(r.Path),
					ProjectName: m.Project,
					SprintName:  s.label(),
					UploadDate:  uploaded,
					Status:      r.Status,
				},
			})
		}
		spans[i].to = len(refs)
	}

	// A report listed under several sprints is read once; each listing
	// keeps its own metadata.
	var unique []FileRef
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		if !seen[r.Path] {
			seen[r.Path] = true
			unique = append(unique, FileRef{Path: r.Path})
		}
	}
	res, err := l.Load(ctx, unique)
	if err != nil {
		return nil, nil, err
	}
	raw := make(map[string]any, len(res.Uploads))
	for _, u := range res.Uploads {
		raw[u.FileID] = u.Raw
	}

	for i, sp := range spans {
		for _, r := range refs[sp.from:sp.to] {
			body, ok := raw[r.Path]
			if !ok {
				continue
			}
			inputs[i].Reports = append(inputs[i].Reports, aggregate.Upload{Meta: r.Meta, Raw: body})
		}
	}
	return inputs, res.Failed, nil
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

func (s ManifestSprint) label() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.ID
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
