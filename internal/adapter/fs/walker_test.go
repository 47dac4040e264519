package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chatsearch/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalker_CatalogFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "phones.yaml"), "- title: a")
	writeFile(t, filepath.Join(dir, "sub", "acc.json"), "[]")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "chatsearch.yaml"), "search: {}")
	writeFile(t, filepath.Join(dir, ".chatsearch", "config.yaml"), "search: {}")

	files, err := NewWalker(nil, nil).Walk(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 catalog files, got %d: %+v", len(files), files)
	}
	if filepath.Base(files[0].Path) != "phones.yaml" {
		t.Errorf("expected phones.yaml first, got %s", files[0].Path)
	}
}

func TestWalker_Matches(t *testing.T) {
	w := NewWalker(nil, nil)
	cases := map[string]bool{
		"catalog.yaml":             true,
		"data/items.json":          true,
		"readme.md":                false,
		".chatsearch/catalog.yaml": false,
	}
	for path, want := range cases {
		if got := w.Matches(path); got != want {
			t.Errorf("Matches(%q): expected %v, got %v", path, want, got)
		}
	}
}

func TestParseCatalog(t *testing.T) {
	yamlDoc := `
items:
  - title: iPhone 15 Pro
    category: Smartphone
    keywords: [apple, hp]
    price_numeric: 20000000
    recommended: true
  - title: Charger 20W
    extra:
      garansi: 1 tahun
`
	items, err := ParseCatalog([]byte(yamlDoc), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Price == nil || *items[0].Price != 20000000 {
		t.Errorf("expected price 20000000, got %v", items[0].Price)
	}
	if !items[0].Recommended || len(items[0].Keywords) != 2 {
		t.Errorf("unexpected item %+v", items[0])
	}
	if items[1].Extra["garansi"] != "1 tahun" {
		t.Errorf("expected extra field, got %v", items[1].Extra)
	}

	jsonDoc := `[{"title": "Paket Hemat", "sale_price_numeric": 99000}]`
	items, err = ParseCatalog([]byte(jsonDoc), ".json")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].SalePrice == nil {
		t.Fatalf("unexpected json items %+v", items)
	}

	if _, err := ParseCatalog([]byte(`[{"description": "x"}]`), ".json"); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
	if items, err := ParseCatalog([]byte("  "), ".yaml"); err != nil || items != nil {
		t.Errorf("expected empty catalog, got %v %v", items, err)
	}
}

func TestLoadCatalog_LaterFilesReplace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "- title: iPhone 15 Pro\n  category: Old\n- title: Charger 20W\n")
	writeFile(t, filepath.Join(dir, "b.json"), `{"items": [{"title": "iPhone 15 Pro", "category": "Smartphone"}]}`)

	items, files, err := LoadCatalog(NewWalker(nil, nil), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %d", len(files))
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "iPhone 15 Pro" || items[0].Category != "Smartphone" {
		t.Errorf("expected replaced iPhone in first position, got %+v", items[0])
	}
}
