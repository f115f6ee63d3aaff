package retentionkeeper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// patternCatalogFile mirrors the on-disk YAML shape for an operator-supplied
// pattern catalog, overriding the built-in DefaultPatternCatalog.
type patternCatalogFile struct {
	Patterns []patternCatalogEntry `yaml:"patterns"`
}

type patternCatalogEntry struct {
	Name         string          `yaml:"name"`
	Regex        string          `yaml:"regex"`
	Weight       int             `yaml:"weight"`
	Category     string          `yaml:"category"`
	ModifierTags map[string]bool `yaml:"modifier_tags"`
}

// LoadPatternCatalog reads a YAML pattern catalog from disk. The
// built-in catalog is used whenever Config.PatternCatalogPath is empty.
func LoadPatternCatalog(path string) ([]Pattern, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("retentionkeeper: read pattern catalog %s: %w", path, err)
	}

	var file patternCatalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("retentionkeeper: parse pattern catalog %s: %w", path, err)
	}

	catalog := make([]Pattern, 0, len(file.Patterns))
	for _, e := range file.Patterns {
		catalog = append(catalog, Pattern{
			Name:         e.Name,
			Regex:        e.Regex,
			Weight:       e.Weight,
			Category:     e.Category,
			ModifierTags: e.ModifierTags,
		})
	}
	return catalog, nil
}
