package analyzer

import (
	"testing"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer(NewIndonesianProvider(""), 1)

	tokens := tok.Tokenize("Harga iPhone?! Berapa, kak")
	expected := []string{"harga", "iphone", "berapa", "kak"}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token %d: expected %q, got %q", i, expected[i], tokens[i])
		}
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer(nil, 1)

	tokens := tok.Tokenize("a b go to x")
	for _, token := range tokens {
		if len(token) < 2 {
			t.Errorf("short word should be removed: %s", token)
		}
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 tokens, got %d: %v", len(tokens), tokens)
	}
}

func TestTokenizer_MinLength(t *testing.T) {
	tok := NewTokenizer(nil, 2)

	tokens := tok.Tokenize("hp ini mahal")
	if len(tokens) != 2 || tokens[0] != "ini" || tokens[1] != "mahal" {
		t.Errorf("expected [ini mahal], got %v", tokens)
	}
}

func TestTokenizer_Diacritics(t *testing.T) {
	tok := NewTokenizer(NewIndonesianProvider(""), 1)

	tokens := tok.Tokenize("Café crème")
	if len(tokens) != 2 || tokens[0] != "cafe" || tokens[1] != "creme" {
		t.Errorf("expected diacritics folded, got %v", tokens)
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(NewIndonesianProvider(""), 1)

	tokens := tok.Tokenize("")
	if len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}

	tokens = tok.Tokenize("?!, ;")
	if len(tokens) != 0 {
		t.Errorf("expected 0 tokens for punctuation-only input, got %v", tokens)
	}
}

func TestTokenizer_InvalidUTF8(t *testing.T) {
	tok := NewTokenizer(NewIndonesianProvider(""), 1)

	tokens := tok.Tokenize("harga\xff\xfeiphone")
	if len(tokens) != 2 {
		t.Errorf("expected invalid bytes to split words, got %v", tokens)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 2},
		{"hello-world", 2},
		{"harga?fitur", 2},
		{"iPhone15", 1},
		{"128 GB", 2},
		{"", 0},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
