package fuzzy

import (
	"testing"
)

func TestNormalizeQuery(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Bohemian Rhapsody", "bohemian rhapsody"},
		{"strips punctuation", "what's up?!", "what s up"},
		{"collapses whitespace", "  some   song  ", "some song"},
		{"folds diacritics", "Beyoncé Café", "beyonce cafe"},
		{"keeps digits", "Song 2", "song 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.NormalizeQuery(tt.input); got != tt.expected {
				t.Errorf("NormalizeQuery(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips featuring", "Song Title (feat. Someone)", "song title"},
		{"strips ft", "Track ft. Other Artist", "track"},
		{"strips official video", "Great Song (Official Video)", "great song"},
		{"strips lyric tag", "Great Song [Lyric Video]", "great song"},
		{"plain title unchanged", "Plain Title", "plain title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.NormalizeTitle(tt.input); got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCalculateSimilarity(t *testing.T) {
	n := NewNormalizer()

	if got := n.CalculateSimilarity("same", "same"); got != 1.0 {
		t.Errorf("identical strings = %v, expected 1.0", got)
	}
	if got := n.CalculateSimilarity("", "anything"); got != 0.0 {
		t.Errorf("empty string = %v, expected 0.0", got)
	}
	if got := n.CalculateSimilarity("abcdef", "abcxef"); got < 0.5 {
		t.Errorf("near match = %v, expected > 0.5", got)
	}
	if got := n.CalculateSimilarity("abc", "xyz"); got != 0.0 {
		t.Errorf("disjoint strings = %v, expected 0.0", got)
	}
}
