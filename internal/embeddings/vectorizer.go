package embeddings

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// maxVocabulary caps the tf-idf term space at 5000 unigrams+bigrams.
const maxVocabulary = 5000

// tfidfVectorizer is the lexical embedding backend: a fixed vocabulary of
// unigrams and bigrams weighted by smoothed inverse document frequency.
// The vocabulary is frozen at Fit time; Transform on unseen terms yields zeros.
type tfidfVectorizer struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`

	index map[string]int
}

// Fit builds the vocabulary from the corpus, keeping the maxVocabulary most
// frequent terms. Ties break alphabetically so repeated fits on the same
// corpus produce the same vocabulary.
func (v *tfidfVectorizer) Fit(corpus []string) {
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range corpus {
		terms := tokenize(doc)
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			corpusFreq[term]++
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}

	terms := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
			return corpusFreq[terms[i]] > corpusFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxVocabulary {
		terms = terms[:maxVocabulary]
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	v.Terms = terms
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		// Smoothed idf: ln((1+n)/(1+df)) + 1.
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	v.buildIndex()
}

// Transform maps texts into tf-idf rows, L2-normalized per document.
func (v *tfidfVectorizer) Transform(texts []string) *mat.Dense {
	width := len(v.Terms)
	if width == 0 {
		return nil
	}

	out := mat.NewDense(len(texts), width, nil)
	for i, doc := range texts {
		row := out.RawRowView(i)
		for _, term := range tokenize(doc) {
			if j, ok := v.index[term]; ok {
				row[j]++
			}
		}
		for j := range row {
			row[j] *= v.IDF[j]
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}
	return out
}

func (v *tfidfVectorizer) Width() int { return len(v.Terms) }

func (v *tfidfVectorizer) Fitted() bool { return len(v.Terms) > 0 }

func (v *tfidfVectorizer) buildIndex() {
	v.index = make(map[string]int, len(v.Terms))
	for i, term := range v.Terms {
		v.index[term] = i
	}
}

// tokenize lowercases the text and emits word unigrams plus adjacent bigrams.
// Words shorter than two characters are dropped, matching the tf-idf
// conventions the trained artifacts assume.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	kept := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= 2 {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}
