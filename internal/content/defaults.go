package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Seed holds the documents a fresh install starts with.
type Seed struct {
	Site  Document
	Pages map[string]Document
}

// Defaults parses the embedded seed content. Pages missing from the seed get
// their schema's empty instance.
func Defaults() (Seed, error) {
	return ParseSeed(defaultsYAML)
}

// ParseSeed parses seed content in YAML form.
func ParseSeed(data []byte) (Seed, error) {
	var raw struct {
		Site  map[string]any            `yaml:"site"`
		Pages map[string]map[string]any `yaml:"pages"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Seed{}, fmt.Errorf("parse seed content: %w", err)
	}

	seed := Seed{
		Site:  SiteSchema().Normalize(raw.Site),
		Pages: make(map[string]Document, len(pageSchemas)),
	}
	for _, key := range PageKeys() {
		schema := pageSchemas[key]
		seed.Pages[key] = schema.Normalize(raw.Pages[key])
	}
	return seed, nil
}
