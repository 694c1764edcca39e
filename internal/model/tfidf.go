package model

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// spanishStopWords is the stop-word list of the catalog language. Single
// letter words are listed for completeness; the tokenizer drops them anyway.
var spanishStopWords = []string{
	"la", "las", "el", "los", "de", "del", "y", "o", "un", "una", "unos", "unas",
	"que", "con", "a", "en", "por", "para", "su", "sus", "al", "es",
}

// tfidfVectorizer maps text to L2-normalised TF-IDF vectors.
//
// Tokens are lowercased runs of two or more letters, digits or underscores.
// Weights are raw term counts times a smoothed idf, ln((1+n)/(1+df)) + 1.
// The vocabulary is fixed by fit; unknown terms are ignored by transform.
type tfidfVectorizer struct {
	stopWords  map[string]struct{}
	vocabulary map[string]int
	idf        []float64
}

func newTFIDFVectorizer(stopWords []string) *tfidfVectorizer {
	sw := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		sw[w] = struct{}{}
	}
	return &tfidfVectorizer{stopWords: sw}
}

// fitTransform learns the vocabulary and idf weights from docs and returns
// one vector per doc.
func (t *tfidfVectorizer) fitTransform(docs []string) []sparseVector {
	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := t.analyze(doc)
		tokenized[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	t.vocabulary = make(map[string]int, len(terms))
	t.idf = make([]float64, len(terms))
	for i, term := range terms {
		t.vocabulary[term] = i
		t.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]sparseVector, len(docs))
	for i, tokens := range tokenized {
		vectors[i] = t.vectorize(tokens)
	}
	return vectors
}

// transform projects doc into the fitted space.
func (t *tfidfVectorizer) transform(doc string) sparseVector {
	return t.vectorize(t.analyze(doc))
}

func (t *tfidfVectorizer) vocabularySize() int {
	return len(t.vocabulary)
}

func (t *tfidfVectorizer) analyze(doc string) []string {
	tokens := tokenize(doc)
	out := tokens[:0]
	for _, tok := range tokens {
		if _, stop := t.stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (t *tfidfVectorizer) vectorize(tokens []string) sparseVector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := t.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	v := sparseVector{
		idx: make([]int, 0, len(counts)),
		val: make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		v.idx = append(v.idx, idx)
	}
	sort.Ints(v.idx)

	var sumSq float64
	for _, idx := range v.idx {
		w := counts[idx] * t.idf[idx]
		v.val = append(v.val, w)
		sumSq += w * w
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range v.val {
			v.val[i] /= norm
		}
	}
	return v
}

// tokenize lowercases s and splits it into word tokens of at least two runes.
func tokenize(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})

	tokens := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
