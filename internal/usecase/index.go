package usecase

import (
	"fmt"

	"chatsearch/internal/adapter/fs"
	"chatsearch/internal/domain"
	"chatsearch/internal/port"
)

// ProgressFunc reports ingest progress after each file.
type ProgressFunc func(processed, total int, currentFile string)

// IndexUseCase ingests catalog files into a catalog store.
type IndexUseCase struct {
	store  port.CatalogStore
	walker *fs.Walker
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(store port.CatalogStore, walker *fs.Walker) *IndexUseCase {
	if walker == nil {
		walker = fs.NewWalker(nil, nil)
	}
	return &IndexUseCase{store: store, walker: walker}
}

// IndexResult contains the results of an ingest.
type IndexResult struct {
	FilesRead    int
	FilesFailed  int
	ItemsStored  int
	ItemsDeleted int
	Errors       []string
}

// Index reads every catalog file under root and syncs the store with it.
// A file that fails to parse is reported and skipped; its items are kept
// in the store as they were rather than deleted.
func (u *IndexUseCase) Index(root string, progress ProgressFunc) (*IndexResult, error) {
	result := &IndexResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existing, err := u.store.ListItems()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing items: %w", err)
	}

	var items []domain.CatalogItem
	index := make(map[string]int)
	failed := false
	for i, file := range files {
		loaded, err := fs.LoadCatalogFile(file.Path)
		if err != nil {
			result.FilesFailed++
			result.Errors = append(result.Errors, err.Error())
			failed = true
		} else {
			result.FilesRead++
			for _, item := range loaded {
				if j, ok := index[item.Key()]; ok {
					items[j] = item
					continue
				}
				index[item.Key()] = len(items)
				items = append(items, item)
			}
		}
		if progress != nil {
			progress(i+1, len(files), file.Path)
		}
	}

	if len(items) > 0 {
		if err := u.store.PutItems(items); err != nil {
			return nil, fmt.Errorf("failed to store items: %w", err)
		}
	}
	result.ItemsStored = len(items)

	// Without a complete read there is no telling which items were removed.
	if failed {
		return result, nil
	}
	for _, item := range existing {
		if _, ok := index[item.Key()]; ok {
			continue
		}
		if err := u.store.DeleteItem(item.Key()); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", item.Key(), err))
			continue
		}
		result.ItemsDeleted++
	}

	return result, nil
}

// LoadInto replaces the engine's catalog with the stored items.
func (u *IndexUseCase) LoadInto(engine *Engine) (int, error) {
	items, err := u.store.ListItems()
	if err != nil {
		return 0, fmt.Errorf("failed to list items: %w", err)
	}
	if err := engine.SetCatalog(items); err != nil {
		return 0, err
	}
	return len(items), nil
}
