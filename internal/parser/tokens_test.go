package parser

import (
	"testing"

	"github.com/timmy/docmill/internal/domain"
)

func TestApproxTokens(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "one word", text: "hello", want: 1},
		{name: "three words", text: "one two three", want: 4},
		{name: "six words", text: "a b c d e f", want: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := approxTokens(tc.text); got != tc.want {
				t.Errorf("approxTokens(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestCountTokensDocs(t *testing.T) {
	docs := []domain.Document{
		{Text: "one two"},
		{Text: "three four five"},
	}
	got := CountTokensDocs(docs, wordCounter)
	if got != 5 {
		t.Errorf("CountTokensDocs = %d, want 5", got)
	}
}

func TestCountTokensDocsEmpty(t *testing.T) {
	if got := CountTokensDocs(nil, wordCounter); got != 0 {
		t.Errorf("CountTokensDocs(nil) = %d, want 0", got)
	}
}
