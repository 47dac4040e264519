package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestIndonesianProvider_Stem(t *testing.T) {
	p := NewIndonesianProvider("")

	tests := []struct {
		word     string
		expected string
	}{
		{"makanan", "makan"},
		{"harganya", "harga"},
		{"fiturnya", "fitur"},
		{"dibelikan", "beli"},
		{"berlari", "lari"},
		{"tersedia", "sedia"},
		{"menyapu", "sapu"},
		{"bukunya", "buku"},
		{"mainkan", "main"},
		{"beli", "beli"},
		{"berapa", "berapa"},
		{"diskon", "diskon"},
		{"sepatu", "sepatu"},
		{"makan", "makan"},
		{"hp", "hp"},
	}

	for _, tt := range tests {
		if got := p.Stem(tt.word); got != tt.expected {
			t.Errorf("Stem(%q) = %q, want %q", tt.word, got, tt.expected)
		}
	}
}

func TestIndonesianProvider_Dictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roots.txt")
	if err := os.WriteFile(path, []byte("# roots\nkirim\nsekolah\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewIndonesianProvider(path)
	if p.IsReady() {
		t.Fatal("expected provider not ready before Init")
	}
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsReady() {
		t.Fatal("expected provider ready after Init")
	}

	if got := p.Stem("pengiriman"); got != "kirim" {
		t.Errorf("expected recoded root 'kirim', got %q", got)
	}
	if got := p.Stem("sekolah"); got != "sekolah" {
		t.Errorf("expected dictionary root kept, got %q", got)
	}
}

func TestIndonesianProvider_InitMissingFile(t *testing.T) {
	p := NewIndonesianProvider("/nonexistent/roots.txt")
	if err := p.Init(context.Background()); err == nil {
		t.Error("expected error for missing dictionary")
	}
}

func TestPorterStemmer(t *testing.T) {
	s := NewPorterStemmer()

	tests := []struct {
		word     string
		expected string
	}{
		{"running", "run"},
		{"caresses", "caress"},
		{"relational", "relat"},
		{"conditional", "condit"},
		{"hopefulness", "hope"},
		{"go", "go"},
		{"café", "café"},
	}

	for _, tt := range tests {
		if got := s.Stem(tt.word); got != tt.expected {
			t.Errorf("Stem(%q) = %q, want %q", tt.word, got, tt.expected)
		}
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider("id", ""); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	p, err := NewProvider("en", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Stem("prices"); got != "price" {
		t.Errorf("expected english stemming, got %q", got)
	}
	if _, err := NewProvider("xx", ""); err == nil {
		t.Error("expected error for unsupported language")
	}
}
