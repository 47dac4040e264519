package port

import "context"

// LinguisticProvider supplies the language-specific pieces of preprocessing.
type LinguisticProvider interface {
	// Normalize lowercases and folds the text into a comparable form.
	Normalize(text string) string

	// Stem reduces a single word to its root form.
	Stem(word string) string

	// StopWords returns the provider's default stop-word list.
	StopWords() []string
}

// Initializer is implemented by providers that load resources lazily.
type Initializer interface {
	Init(ctx context.Context) error
	IsReady() bool
}
