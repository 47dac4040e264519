package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsearch/config"
	"chatsearch/internal/adapter/analyzer"
	"chatsearch/internal/domain"
)

func process(t *testing.T, text string) domain.ProcessedQuery {
	t.Helper()
	p, err := analyzer.NewPreprocessor(analyzer.NewIndonesianProvider(""), config.DefaultConfig().Preprocess)
	require.NoError(t, err)
	return p.Process(text)
}

func TestDetector_ContactBeatsSales(t *testing.T) {
	d := NewDetector(NewClassifier(), config.DefaultConfig().Intent)

	got := d.Explain(process(t, "hubungi admin soal harga"))
	assert.Equal(t, "chat_contact", got.Label)
	assert.Equal(t, StageContact, got.Stage)
}

func TestDetector_RuleTables(t *testing.T) {
	d := NewDetector(nil, config.DefaultConfig().Intent)

	tests := []struct {
		text     string
		expected string
	}{
		{"halo", "chat_greeting"},
		{"terima kasih ya", "chat_thanks"},
		{"beli iphone", "sales_beli"},
		{"berapa harganya", "sales_harga"},
		{"fiturnya apa", "sales_fitur"},
		{"masih ready?", "sales_stok"},
		{"laptop asus", "fuzzy"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, d.Detect(process(t, tt.text)), "text %q", tt.text)
	}
}

func TestDetector_StemsMatchTriggers(t *testing.T) {
	d := NewDetector(nil, config.DefaultConfig().Intent)

	// "pembelian" reaches the "beli" trigger through stemming.
	pq := process(t, "pembelian")
	require.Contains(t, pq.Stems, "beli")
	assert.Equal(t, "sales_beli", d.Detect(pq))
}

func TestDetector_CustomRules(t *testing.T) {
	cfg := config.DefaultConfig().Intent
	cfg.Rules = []config.IntentRule{
		{Label: "premium_inquiry", Entities: []string{"isPremium"}, Tokens: []string{"harga", "berapa"}},
		{Label: "warranty", Entities: []string{"wantsWarranty"}},
	}
	d := NewDetector(nil, cfg)

	assert.Equal(t, "premium_inquiry", d.Detect(process(t, "harga versi pro")))
	assert.Equal(t, "sales_harga", d.Detect(process(t, "harga versi biasa")), "entity condition must hold")
	assert.Equal(t, "warranty", d.Detect(process(t, "garansi resmi")), "absent token condition is vacuous")
}

func TestDetector_ClassifierThresholds(t *testing.T) {
	cfg := config.DefaultConfig().Intent

	strong := NewClassifier()
	strong.Train("pesanan saya belum sampai", "complaint")
	d := NewDetector(strong, cfg)

	got := d.Explain(process(t, "pesanan belum sampai, harga?"))
	assert.Equal(t, "complaint", got.Label, "a single-label classifier is fully confident and wins over rules")
	assert.Equal(t, StageClassifier, got.Stage)

	cfg.HighThreshold = 1.1
	d = NewDetector(strong, cfg)
	got = d.Explain(process(t, "pesanan belum sampai, harga?"))
	assert.Equal(t, "sales_harga", got.Label, "rules win when the classifier is below the high threshold")

	got = d.Explain(process(t, "pesanan belum sampai"))
	assert.Equal(t, "complaint", got.Label)
	assert.Equal(t, StageWeakClassifier, got.Stage)
}

func TestDetector_Fallback(t *testing.T) {
	d := NewDetector(nil, config.DefaultConfig().Intent)

	got := d.Explain(process(t, ""))
	assert.Equal(t, "fuzzy", got.Label)
	assert.Equal(t, StageFallback, got.Stage)
}

func TestDetector_Families(t *testing.T) {
	d := NewDetector(nil, config.DefaultConfig().Intent)

	assert.True(t, d.IsConversational("chat_greeting"))
	assert.False(t, d.IsConversational("sales_harga"))
	assert.True(t, d.IsSales("sales_harga"))
	assert.False(t, d.IsSales("fuzzy"))
}
