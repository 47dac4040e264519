package intent

import (
	"math"
	"sync"

	"chatsearch/config"
	"chatsearch/internal/adapter/analyzer"
)

// UnknownLabel is returned by a classifier without training data.
const UnknownLabel = "unknown"

// Classifier is a multinomial Naive Bayes classifier over bag-of-words
// phrases. It is safe for concurrent use; training may continue while
// other goroutines classify.
type Classifier struct {
	mu        sync.RWMutex
	tokenizer *analyzer.Tokenizer

	labels     []string // first-seen order, used for tie-breaks
	docCounts  map[string]int
	wordCounts map[string]map[string]int
	wordTotals map[string]int
	vocabulary map[string]struct{}
	docs       int
}

// NewClassifier creates an empty classifier.
func NewClassifier() *Classifier {
	return &Classifier{
		tokenizer:  analyzer.NewTokenizer(nil, 2),
		docCounts:  make(map[string]int),
		wordCounts: make(map[string]map[string]int),
		wordTotals: make(map[string]int),
		vocabulary: make(map[string]struct{}),
	}
}

// NewTrainedClassifier creates a classifier and trains it on examples.
func NewTrainedClassifier(examples []config.TrainingExample) *Classifier {
	c := NewClassifier()
	for _, ex := range examples {
		c.Train(ex.Text, ex.Label)
	}
	return c
}

// Train adds one labelled phrase. Only words longer than two characters count.
func (c *Classifier) Train(text, label string) {
	if label == "" {
		return
	}
	words := c.tokenizer.Tokenize(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docCounts[label]; !ok {
		c.labels = append(c.labels, label)
		c.wordCounts[label] = make(map[string]int)
	}
	c.docCounts[label]++
	c.docs++
	for _, w := range words {
		c.wordCounts[label][w]++
		c.wordTotals[label]++
		c.vocabulary[w] = struct{}{}
	}
}

// Classify returns the most likely label and a confidence in [0, 1].
//
// The confidence is a softmax over the per-label log scores. It orders
// labels sensibly but is a calibration heuristic, not a posterior
// probability, so thresholds on it must be tuned against the training set.
func (c *Classifier) Classify(text string) (string, float64) {
	words := c.tokenizer.Tokenize(text)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.docs == 0 {
		return UnknownLabel, 0
	}

	vocab := float64(len(c.vocabulary))
	scores := make([]float64, len(c.labels))
	best := 0
	for i, label := range c.labels {
		score := math.Log(float64(c.docCounts[label]) / float64(c.docs))
		denom := float64(c.wordTotals[label]) + vocab
		counts := c.wordCounts[label]
		for _, w := range words {
			score += math.Log((float64(counts[w]) + 1) / denom)
		}
		scores[i] = score
		if score > scores[best] {
			best = i
		}
	}

	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - scores[best])
	}
	return c.labels[best], 1 / sum
}

// Labels returns the known labels in first-seen order.
func (c *Classifier) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.labels...)
}
