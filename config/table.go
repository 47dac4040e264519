package config

// Entry is one keyed word list of an ordered table.
type Entry struct {
	Key   string   `yaml:"key"`
	Words []string `yaml:"words"`
}

// Table is an ordered key -> words mapping. Lookups walk the entries in
// order, so the first matching entry wins.
type Table []Entry

// Get returns the words for key.
func (t Table) Get(key string) ([]string, bool) {
	for _, e := range t {
		if e.Key == key {
			return e.Words, true
		}
	}
	return nil, false
}

// Keys returns the keys in table order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for _, e := range t {
		keys = append(keys, e.Key)
	}
	return keys
}

// Merge returns a copy of t with overrides applied shallowly: an override
// with an existing key replaces that entry in place, new keys are appended.
func (t Table) Merge(overrides Table) Table {
	out := make(Table, 0, len(t)+len(overrides))
	index := make(map[string]int, len(t))
	for _, e := range t {
		index[e.Key] = len(out)
		out = append(out, Entry{Key: e.Key, Words: append([]string(nil), e.Words...)})
	}
	for _, e := range overrides {
		words := append([]string(nil), e.Words...)
		if i, ok := index[e.Key]; ok {
			out[i].Words = words
			continue
		}
		index[e.Key] = len(out)
		out = append(out, Entry{Key: e.Key, Words: words})
	}
	return out
}

// Reverse finds the first entry whose word list contains word.
func (t Table) Reverse(word string) (string, bool) {
	for _, e := range t {
		for _, w := range e.Words {
			if w == word {
				return e.Key, true
			}
		}
	}
	return "", false
}
