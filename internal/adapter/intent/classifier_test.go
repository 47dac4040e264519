package intent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatsearch/config"
)

func TestClassifier_Empty(t *testing.T) {
	c := NewClassifier()

	label, conf := c.Classify("berapa harga iphone")
	assert.Equal(t, UnknownLabel, label)
	assert.Equal(t, 0.0, conf)
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()
	c.Train("berapa harga hp ini", "price")
	c.Train("harganya berapa", "price")
	c.Train("halo selamat pagi", "greeting")
	c.Train("hai selamat siang", "greeting")

	label, conf := c.Classify("harga laptop berapa")
	assert.Equal(t, "price", label)
	assert.Greater(t, conf, 0.5)
	assert.LessOrEqual(t, conf, 1.0)

	label, _ = c.Classify("selamat pagi kak")
	assert.Equal(t, "greeting", label)
}

func TestClassifier_ShortWordsIgnored(t *testing.T) {
	c := NewClassifier()
	c.Train("hp ok", "a")

	assert.Empty(t, c.vocabulary, "words of two characters or fewer are not learned")
}

func TestClassifier_TieBreaksOnTrainingOrder(t *testing.T) {
	c := NewClassifier()
	c.Train("satu", "first")
	c.Train("dua", "second")

	label, conf := c.Classify("tiga")
	assert.Equal(t, "first", label)
	assert.InDelta(t, 0.5, conf, 1e-9)
}

func TestClassifier_ConfidenceIsSoftmax(t *testing.T) {
	c := NewClassifier()
	c.Train("beli sekarang", "buy")

	_, conf := c.Classify("apapun")
	assert.InDelta(t, 1.0, conf, 1e-9, "single label always gets full confidence")
}

func TestClassifier_DefaultCorpus(t *testing.T) {
	c := NewTrainedClassifier(config.DefaultConfig().Intent.Training)

	tests := []struct {
		text     string
		expected string
	}{
		{"harganya berapa ya", "sales_harga"},
		{"fiturnya apa", "sales_fitur"},
		{"terima kasih kak", "chat_thanks"},
		{"ongkir ke surabaya", "sales_kirim"},
	}
	for _, tt := range tests {
		label, _ := c.Classify(tt.text)
		assert.Equal(t, tt.expected, label, "text %q", tt.text)
	}
}

func TestClassifier_ConcurrentTrainAndClassify(t *testing.T) {
	c := NewClassifier()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Train("berapa harga", "price")
		}()
		go func() {
			defer wg.Done()
			c.Classify("harga")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"price"}, c.Labels())
}
