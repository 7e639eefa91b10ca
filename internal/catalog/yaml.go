package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/friday-agent/internal/domain"
)

//go:embed features.yaml
var defaultFeatures []byte

type catalogFile struct {
	Features []featureEntry `yaml:"features"`
}

type featureEntry struct {
	ID          scalarID `yaml:"id"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Command     string   `yaml:"command"`
	Description string   `yaml:"description"`
}

// scalarID accepts both `id: 12` and `id: "set-reminder"`.
type scalarID string

func (s *scalarID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: feature id must be a scalar", n.Line)
	}
	*s = scalarID(n.Value)
	return nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) ([]domain.FeatureRecord, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}

	out := make([]domain.FeatureRecord, 0, len(file.Features))
	for _, e := range file.Features {
		cat, err := domain.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", e.Name, err)
		}
		out = append(out, domain.FeatureRecord{
			ID:             domain.FeatureID(e.ID),
			Name:           e.Name,
			Category:       cat,
			TriggerCommand: e.Command,
			Description:    e.Description,
		})
	}
	return out, nil
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) LoadFeatures(context.Context) ([]domain.FeatureRecord, error) {
	return Parse(defaultFeatures)
}

// FileSource reads a YAML catalog from disk.
type FileSource struct {
	Path string
}

func (s FileSource) LoadFeatures(context.Context) ([]domain.FeatureRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.Path, err)
	}
	return Parse(data)
}

// Default builds the embedded catalog.
func Default() (*Catalog, error) {
	return Load(context.Background(), EmbeddedSource{})
}
