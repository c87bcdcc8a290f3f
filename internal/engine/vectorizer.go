package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// stopWords are filtered out of the vocabulary; common English function
// words carry no similarity signal.
var stopWords = buildStopWords()

func buildStopWords() map[string]bool {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "will", "with", "this", "but", "they", "have",
		"had", "what", "said", "each", "which", "she", "do", "how", "their",
		"if", "up", "out", "many", "then", "them", "these", "so", "some",
		"or", "not", "your", "all", "can", "our", "other", "into", "more",
	}

	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// sparseVec is one TF-IDF weighted document row keyed by vocabulary index.
// Rows are L2 normalized at fit time, so a plain dot product between two
// rows is their cosine similarity.
type sparseVec map[int]float64

func (v sparseVec) dot(other sparseVec) float64 {
	// Iterate the smaller map.
	a, b := v, other
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, val := range a {
		sum += val * b[idx]
	}
	return sum
}

// vectorizer fits a capped, stopword-filtered TF-IDF vocabulary over a
// corpus of feature soups and transforms each soup into a normalized
// sparse row. A vectorizer is fitted once and never mutated afterwards.
type vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// fitVectorizer builds the vocabulary and per-document rows in one pass.
// It fails when the corpus yields no usable terms, which callers treat as
// "vectorization unavailable" and leave the engine unfitted.
func fitVectorizer(soups []string, maxFeatures int) (*vectorizer, []sparseVec, error) {
	docTokens := make([][]string, len(soups))
	termCorpusCount := make(map[string]int)
	docFrequency := make(map[string]int)

	for i, soup := range soups {
		tokens := tokenizeSoup(soup)
		docTokens[i] = tokens

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			termCorpusCount[tok]++
			if !seen[tok] {
				seen[tok] = true
				docFrequency[tok]++
			}
		}
	}

	if len(termCorpusCount) == 0 {
		return nil, nil, fmt.Errorf("corpus produced no terms after filtering")
	}

	// Cap the vocabulary at the most frequent terms across the corpus.
	// Ties break alphabetically so the mapping is deterministic.
	terms := make([]string, 0, len(termCorpusCount))
	for term := range termCorpusCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termCorpusCount[terms[i]] != termCorpusCount[terms[j]] {
			return termCorpusCount[terms[i]] > termCorpusCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	v := &vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	totalDocs := float64(len(soups))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF: log((1+N)/(1+df)) + 1 keeps every vocabulary term
		// at a strictly positive weight.
		v.idf[i] = math.Log((1+totalDocs)/(1+float64(docFrequency[term]))) + 1
	}

	rows := make([]sparseVec, len(soups))
	for i, tokens := range docTokens {
		rows[i] = v.transform(tokens)
	}

	return v, rows, nil
}

// transform turns a token list into an L2 normalized TF-IDF row.
func (v *vectorizer) transform(tokens []string) sparseVec {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	row := make(sparseVec, len(counts))
	if len(counts) == 0 {
		return row
	}

	values := make([]float64, 0, len(counts))
	indices := make([]int, 0, len(counts))
	for idx, count := range counts {
		indices = append(indices, idx)
		values = append(values, float64(count)*v.idf[idx])
	}

	norm := floats.Norm(values, 2)
	if norm == 0 {
		return row
	}
	for i, idx := range indices {
		row[idx] = values[i] / norm
	}
	return row
}

func tokenizeSoup(soup string) []string {
	var tokens []string
	for _, tok := range strings.Fields(soup) {
		if len(tok) < 2 || stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// minMaxScaler maps a column into [0,1]. A degenerate column (all values
// equal) scales to 0 for every row, matching the behavior the heuristic
// was tuned against.
type minMaxScaler struct {
	min, max float64
}

func fitScaler(values []float64) minMaxScaler {
	if len(values) == 0 {
		return minMaxScaler{}
	}
	s := minMaxScaler{min: values[0], max: values[0]}
	for _, v := range values[1:] {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	return s
}

func (s minMaxScaler) scale(v float64) float64 {
	if s.max == s.min {
		return 0
	}
	return (v - s.min) / (s.max - s.min)
}
