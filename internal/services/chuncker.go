package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type TextChuncker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChuncker {
	return &textChunker{}
}

// ChunkText packs paragraphs (or, for oversized paragraphs, sentences) into
// chunks of at most maxChunkSize runes. Each chunk after the first starts with
// the last overlap runes of its predecessor.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	acc := &chunkAccumulator{max: maxChunkSize, overlap: overlap}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			acc.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			for _, piece := range splitOversized(sentence, maxChunkSize) {
				acc.add(piece, " ")
			}
		}
	}

	return acc.finish()
}

type chunkAccumulator struct {
	max     int
	overlap int
	current strings.Builder
	size    int
	// seed is the rune count of the overlap carried into current.
	seed   int
	chunks []string
}

func (a *chunkAccumulator) add(piece, sep string) {
	pieceLen := utf8.RuneCountInString(piece)
	sepLen := utf8.RuneCountInString(sep)
	if a.size+sepLen+pieceLen > a.max {
		if a.size > a.seed {
			a.flush()
		}
		// Drop the overlap seed when it leaves no room for the piece.
		if a.size+sepLen+pieceLen > a.max {
			a.current.Reset()
			a.size = 0
			a.seed = 0
		}
	}

	if a.size > 0 {
		a.current.WriteString(sep)
		a.size += sepLen
	}
	a.current.WriteString(piece)
	a.size += pieceLen
}

// flush closes the current chunk and seeds the next one with the overlap tail.
func (a *chunkAccumulator) flush() {
	prev := a.current.String()
	a.chunks = append(a.chunks, prev)
	a.current.Reset()
	a.size = 0
	a.seed = 0

	if tail := getLastNChars(prev, a.overlap); tail != "" && tail != prev {
		a.current.WriteString(tail)
		a.size = utf8.RuneCountInString(tail)
		a.seed = a.size
	}
}

func (a *chunkAccumulator) finish() []string {
	if a.size > a.seed {
		a.chunks = append(a.chunks, a.current.String())
	}
	return a.chunks
}

// splitIntoSentences breaks text after '.', '!' or '?' when the punctuation is
// followed by whitespace and then an upper-case letter or digit. The punctuation
// stays with its sentence, so "e.g. go" and "3.5" are not split.
func splitIntoSentences(text string) []string {
	runes := []rune(text)

	var (
		result []string
		start  int
	)
	emit := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			result = append(result, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		end := i + 1
		for end < len(runes) && isSentenceEnd(runes[end]) {
			end++
		}
		next := end
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next == len(runes) || (next > end && (unicode.IsUpper(runes[next]) || unicode.IsDigit(runes[next]))) {
			emit(end)
		}
		i = end - 1
	}
	emit(len(runes))

	return result
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitOversized cuts a sentence longer than limit runes at word boundaries,
// falling back to hard cuts for single words longer than limit.
func splitOversized(sentence string, limit int) []string {
	if utf8.RuneCountInString(sentence) <= limit {
		return []string{sentence}
	}

	var (
		pieces  []string
		current strings.Builder
		size    int
	)
	for _, word := range strings.Fields(sentence) {
		for utf8.RuneCountInString(word) > limit {
			if size > 0 {
				pieces = append(pieces, current.String())
				current.Reset()
				size = 0
			}
			runes := []rune(word)
			pieces = append(pieces, string(runes[:limit]))
			word = string(runes[limit:])
		}

		wordLen := utf8.RuneCountInString(word)
		if size > 0 && size+1+wordLen > limit {
			pieces = append(pieces, current.String())
			current.Reset()
			size = 0
		}
		if size > 0 {
			current.WriteByte(' ')
			size++
		}
		current.WriteString(word)
		size += wordLen
	}
	if size > 0 {
		pieces = append(pieces, current.String())
	}

	return pieces
}

func getLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
