package curriculum

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileDoc is one curriculum YAML file. A file either lists flat
// units/topics/subtopics or describes a single unit with nested children.
type fileDoc struct {
	Units     []Unit      `yaml:"units"`
	Topics    []Topic     `yaml:"topics"`
	Subtopics []Subtopic  `yaml:"subtopics"`
	Unit      *nestedUnit `yaml:"unit"`
}

type nestedUnit struct {
	Unit   `yaml:",inline"`
	Topics []nestedTopic `yaml:"topics"`
}

type nestedTopic struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Code      string     `yaml:"code"`
	Aliases   []string   `yaml:"aliases"`
	Subtopics []Subtopic `yaml:"subtopics"`
}

// FileSource loads curriculum reference data from a directory of YAML files.
type FileSource struct {
	rootDir string
}

// NewFileSource creates a source reading every .yaml/.yml file under rootDir.
func NewFileSource(rootDir string) *FileSource {
	return &FileSource{rootDir: rootDir}
}

// Load walks the directory and merges every curriculum file it finds.
// Files are read in lexical order so IDs and load order are stable.
func (s *FileSource) Load(ctx context.Context) (Reference, error) {
	var paths []string
	err := filepath.Walk(s.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return Reference{}, fmt.Errorf("walking curriculum dir: %w", err)
	}
	sort.Strings(paths)

	var ref Reference
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return Reference{}, err
		}
		if err := loadFile(path, &ref); err != nil {
			return Reference{}, err
		}
	}

	slog.Info("curriculum loaded",
		"dir", s.rootDir,
		"units", len(ref.Units),
		"topics", len(ref.Topics),
		"subtopics", len(ref.Subtopics),
	)
	return ref, nil
}

func loadFile(path string, ref *Reference) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Warn("skipping invalid curriculum YAML", "path", path, "error", err)
		return nil
	}

	ref.Units = append(ref.Units, doc.Units...)
	ref.Topics = append(ref.Topics, doc.Topics...)
	ref.Subtopics = append(ref.Subtopics, doc.Subtopics...)

	if doc.Unit == nil || doc.Unit.ID == "" {
		return nil
	}
	ref.Units = append(ref.Units, doc.Unit.Unit)
	for _, t := range doc.Unit.Topics {
		ref.Topics = append(ref.Topics, Topic{
			ID:      t.ID,
			Name:    t.Name,
			Code:    t.Code,
			UnitID:  doc.Unit.ID,
			Aliases: t.Aliases,
		})
		for _, st := range t.Subtopics {
			st.TopicID = t.ID
			ref.Subtopics = append(ref.Subtopics, st)
		}
	}
	return nil
}
