package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"chatsearch/internal/domain"
)

// catalogFile is the wrapped form of a catalog document. A bare list of
// items is accepted as well.
type catalogFile struct {
	Items []domain.CatalogItem `json:"items" yaml:"items"`
}

// LoadCatalogFile reads the catalog items in a YAML or JSON file.
func LoadCatalogFile(path string) ([]domain.CatalogItem, error) {
	content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	items, err := ParseCatalog([]byte(content), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ParseCatalog decodes catalog items. ext selects the decoder; anything other
// than ".json" is treated as YAML.
func ParseCatalog(data []byte, ext string) ([]domain.CatalogItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var items []domain.CatalogItem
	isList := data[0] == '[' || data[0] == '-'

	switch strings.ToLower(ext) {
	case ".json":
		if isList {
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, fmt.Errorf("decode json catalog: %w", err)
			}
		} else {
			var f catalogFile
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("decode json catalog: %w", err)
			}
			items = f.Items
		}
	default:
		if isList {
			if err := yaml.Unmarshal(data, &items); err != nil {
				return nil, fmt.Errorf("decode yaml catalog: %w", err)
			}
		} else {
			var f catalogFile
			if err := yaml.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("decode yaml catalog: %w", err)
			}
			items = f.Items
		}
	}

	for i := range items {
		items[i].Title = strings.TrimSpace(items[i].Title)
		if items[i].Title == "" {
			return nil, fmt.Errorf("%w: item %d has no title", domain.ErrInvalidCatalog, i)
		}
	}
	return items, nil
}

// LoadCatalog walks root and loads every catalog file. Files are read in
// lexical order; a later item with the same key replaces an earlier one in
// place.
func LoadCatalog(w *Walker, root string) ([]domain.CatalogItem, []FileInfo, error) {
	files, err := w.Walk(root)
	if err != nil {
		return nil, nil, err
	}

	var items []domain.CatalogItem
	index := make(map[string]int)
	for _, f := range files {
		loaded, err := LoadCatalogFile(f.Path)
		if err != nil {
			return nil, nil, err
		}
		for _, item := range loaded {
			if i, ok := index[item.Key()]; ok {
				items[i] = item
				continue
			}
			index[item.Key()] = len(items)
			items = append(items, item)
		}
	}
	return items, files, nil
}
