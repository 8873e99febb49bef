package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_IsValid(t *testing.T) {
	g := NewGate()
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \t\n ", false},
		{"under three chars", "hi", false},
		{"punctuation only", "?!... ---", false},
		{"plain sentence", "I would use a map here.", true},
		{"digits count", "404 error handling", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, g.IsValid(tc.in))
		})
	}
}

func TestGate_IsNonsensical(t *testing.T) {
	g := NewGate()
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"two tokens", "short answer", true},
		{"gibberish consonants", "xqz fjp wrlm", true},
		{"numbers only", "1 2 3 4", true},
		{"mostly numbers", "1 2 3 yes", true},
		{"normal answer", "I would start by profiling the service.", false},
		{"four plain words", "word word word word", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, g.IsNonsensical(tc.in))
		})
	}
}
