package eval

import (
	"strings"
	"unicode"

	prose "github.com/tsawler/prose/v3"
)

// Features are the lexical signals derived from a single answer. They
// feed the heuristic sub-scorers and the feedback generator.
type Features struct {
	WordCount     int
	SentenceCount int
	FillerCount   int
	AssertiveHits int
	HedgeHits     int
	// Polarity is a signed lexicon sentiment score, scaled to roughly
	// [-5,5] so that max(polarity+5, 0) lands in [0,10].
	Polarity float64
}

// FillerRatio is the share of words that are disfluency tokens.
func (f Features) FillerRatio() float64 {
	if f.WordCount == 0 {
		return 0
	}
	return float64(f.FillerCount) / float64(f.WordCount)
}

// fillerWords are common disfluency tokens; multi-word entries are
// matched as phrases against the lowercased text.
var fillerWords = []string{
	"um", "uh", "er", "hmm", "like", "you know", "basically",
	"actually", "literally", "kind of", "sort of", "i mean",
}

var assertiveWords = []string{
	"definitely", "certainly", "absolutely", "confident", "clearly",
	"sure", "always", "strongly",
}

var hedgeWords = []string{
	"maybe", "perhaps", "possibly", "probably", "i think", "i guess",
	"not sure", "might", "somewhat", "hopefully",
}

// structuralConnectives signal an organized answer for the confidence
// scorer.
var structuralConnectives = []string{
	"because", "therefore", "for example", "for instance",
	"in conclusion", "as a result", "first", "finally",
}

// Extractor derives lexical features from raw text. The sentiment
// lexicon is loaded once at construction and is read-only afterwards,
// so a single Extractor is safe for concurrent use.
type Extractor struct {
	sentiment *prose.SentimentAnalyzer
}

// NewExtractor constructs an Extractor with the English sentiment
// lexicon.
func NewExtractor() *Extractor {
	return &Extractor{
		sentiment: prose.NewSentimentAnalyzer(prose.English, prose.DefaultSentimentConfig()),
	}
}

// Extract computes lexical features for the given text. It never fails:
// if NLP document construction errors out, sentence count and polarity
// degrade to field-split estimates and zero.
func (e *Extractor) Extract(text string) Features {
	lower := strings.ToLower(text)
	tokens := strings.Fields(text)

	f := Features{
		WordCount:     len(tokens),
		SentenceCount: estimateSentences(text),
		FillerCount:   countPhrases(lower, fillerWords),
		AssertiveHits: countPhrases(lower, assertiveWords),
		HedgeHits:     countPhrases(lower, hedgeWords),
	}

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithTagging(false),
	)
	if err == nil {
		if n := len(doc.Sentences()); n > 0 {
			f.SentenceCount = n
		}
		score := e.sentiment.AnalyzeDocument(doc)
		// prose reports polarity in [-1,1]; the scorers expect the
		// wider signed scale of a word-count lexicon.
		f.Polarity = score.Polarity * 5
	}
	return f
}

// HasStructuralConnective reports whether the text contains any causal
// or structural connective ("because", "for example", ...).
func HasStructuralConnective(text string) bool {
	lower := strings.ToLower(text)
	for _, c := range structuralConnectives {
		if containsPhrase(lower, c) {
			return true
		}
	}
	return false
}

// countPhrases counts non-overlapping occurrences of each phrase on
// word boundaries.
func countPhrases(lower string, phrases []string) int {
	total := 0
	for _, p := range phrases {
		total += countPhrase(lower, p)
	}
	return total
}

func countPhrase(lower, phrase string) int {
	count := 0
	for i := 0; ; {
		idx := strings.Index(lower[i:], phrase)
		if idx < 0 {
			break
		}
		start := i + idx
		end := start + len(phrase)
		if boundaryBefore(lower, start) && boundaryAfter(lower, end) {
			count++
		}
		i = end
	}
	return count
}

func containsPhrase(lower, phrase string) bool {
	return countPhrase(lower, phrase) > 0
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r := rune(s[i-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// estimateSentences is the fallback sentence count used when the NLP
// segmenter is unavailable: terminal punctuation runs, floored at one
// for non-empty text.
func estimateSentences(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	n := 0
	inRun := false
	for _, r := range trimmed {
		switch r {
		case '.', '!', '?':
			if !inRun {
				n++
				inRun = true
			}
		default:
			inRun = false
		}
	}
	if n == 0 {
		return 1
	}
	return n
}
