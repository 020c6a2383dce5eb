package markdown

import (
	"regexp"
	"strings"
)

// Chunking defaults, tuned for embedding models with short input windows.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultMinChunkSize = 50
)

var (
	paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)
	sentenceEndRe    = regexp.MustCompile(`[.!?]+\s+`)
)

// ChunkOptions controls how text is split into chunks.
// Sizes are Unicode character counts.
type ChunkOptions struct {
	// ChunkSize is the target maximum chunk size.
	ChunkSize int

	// Overlap is how many characters each chunk may grow by to share
	// leading context with its successor, joining space included.
	// Clamped to ChunkSize-1.
	Overlap int

	// MinChunkSize drops fragments shorter than this, unless dropping
	// them would leave no chunks at all.
	MinChunkSize int
}

// DefaultChunkOptions returns the default chunking configuration.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    DefaultChunkSize,
		Overlap:      DefaultChunkOverlap,
		MinChunkSize: DefaultMinChunkSize,
	}
}

func (o ChunkOptions) sanitized() ChunkOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.Overlap >= o.ChunkSize {
		o.Overlap = o.ChunkSize - 1
	}
	if o.MinChunkSize < 0 {
		o.MinChunkSize = 0
	}
	return o
}

// Chunk splits normalized text into overlapping chunks.
//
// Paragraphs are accumulated greedily while the candidate stays within
// ChunkSize. An oversized paragraph is re-split on sentence boundaries,
// and a single oversized sentence is hard-split at ChunkSize. Every chunk
// except the last is extended with the head of its successor so adjacent
// chunks share context; no chunk exceeds ChunkSize+Overlap.
func Chunk(text string, opts ChunkOptions) []string {
	opts = opts.sanitized()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	var current string

	for _, para := range splitParagraphs(text) {
		candidate := para
		if current != "" {
			candidate = current + "\n\n" + para
		}
		if runeLen(candidate) <= opts.ChunkSize {
			current = candidate
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}

		if runeLen(para) <= opts.ChunkSize {
			current = para
			continue
		}

		// Oversized paragraph: re-split on sentences. The trailing piece
		// stays open so following paragraphs may join it.
		pieces := splitOversized(para, opts.ChunkSize)
		if len(pieces) > 0 {
			chunks = append(chunks, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	chunks = dropFragments(chunks, opts.MinChunkSize)
	applyOverlap(chunks, opts.Overlap)
	return chunks
}

// splitParagraphs splits text on blank lines into trimmed paragraphs.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphSplitRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitOversized splits a paragraph longer than chunkSize into pieces no
// longer than chunkSize, preferring sentence boundaries.
func splitOversized(para string, chunkSize int) []string {
	var pieces []string
	var current string

	for _, sentence := range splitSentences(para) {
		if runeLen(sentence) > chunkSize {
			if current != "" {
				pieces = append(pieces, current)
				current = ""
			}
			hard := hardSplit(sentence, chunkSize)
			pieces = append(pieces, hard[:len(hard)-1]...)
			current = hard[len(hard)-1]
			continue
		}

		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		if runeLen(candidate) <= chunkSize {
			current = candidate
			continue
		}

		pieces = append(pieces, current)
		current = sentence
	}

	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}

// splitSentences splits text on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		end := loc[0]
		// Keep the punctuation run, drop the trailing whitespace.
		for end < loc[1] && !isSpace(text[end]) {
			end++
		}
		s := strings.TrimSpace(text[last:end])
		if s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// hardSplit slices text into chunkSize-rune pieces.
func hardSplit(text string, chunkSize int) []string {
	runes := []rune(text)
	var pieces []string
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[i:end]))
	}
	return pieces
}

// dropFragments removes chunks shorter than minSize. When every chunk is
// below the floor the original set is kept, so short documents still
// produce a chunk.
func dropFragments(chunks []string, minSize int) []string {
	if minSize <= 0 || len(chunks) == 0 {
		return chunks
	}
	kept := chunks[:0:0]
	for _, c := range chunks {
		if runeLen(c) >= minSize {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return chunks
	}
	return kept
}

// applyOverlap extends each chunk with the head of its successor, in
// place. The joining space counts against the overlap budget, so a
// chunk never grows by more than overlap runes.
func applyOverlap(chunks []string, overlap int) {
	if overlap <= 1 {
		return
	}
	for i := 0; i < len(chunks)-1; i++ {
		next := []rune(chunks[i+1])
		n := overlap - 1
		if n > len(next) {
			n = len(next)
		}
		ov := strings.TrimSpace(string(next[:n]))
		if ov != "" {
			chunks[i] += " " + ov
		}
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}
