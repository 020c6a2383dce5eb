// Package markdown prepares markdown book content for embedding.
//
// Normalization strips markdown syntax so that the embedded text carries
// only prose; the chunker then splits that prose along paragraph and
// sentence boundaries.
package markdown

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n?`)

	codeFenceRe   = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`([^`]*)`")
	imageRe       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headingRe     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldRe        = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	italicRe      = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	blockquoteRe  = regexp.MustCompile(`(?m)^>\s?`)
	listMarkerRe  = regexp.MustCompile(`(?m)^(\s*)([-*+]|\d+\.)\s+`)
	horizontalRe  = regexp.MustCompile(`(?m)^(\s*)(---+|\*\*\*+|___+)\s*$`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)

	firstHeadingRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// ParseFrontmatter splits a leading YAML frontmatter block from content.
// Content without a valid frontmatter block is returned unchanged with a
// nil metadata map. A malformed YAML block is treated as no frontmatter.
func ParseFrontmatter(content string) (map[string]any, string) {
	match := frontmatterRe.FindStringSubmatch(content)
	if match == nil {
		return nil, content
	}

	meta := make(map[string]any)
	if err := yaml.Unmarshal([]byte(match[1]), &meta); err != nil {
		return nil, content
	}

	return meta, content[len(match[0]):]
}

// Normalize strips markdown syntax from content, leaving plain prose.
// Normalize is idempotent: applying it twice yields the same result.
func Normalize(content string) string {
	s := content

	s = codeFenceRe.ReplaceAllString(s, "")
	s = imageRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "$1$2")
	s = italicRe.ReplaceAllString(s, "$1$2")
	s = blockquoteRe.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "$1")
	s = horizontalRe.ReplaceAllString(s, "")
	s = multiNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// ExtractTitle determines a document title: the frontmatter "title" key
// wins, then the first level-one heading, then the fallback.
func ExtractTitle(meta map[string]any, content, fallback string) string {
	if meta != nil {
		if title, ok := meta["title"].(string); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
	}

	if match := firstHeadingRe.FindStringSubmatch(content); match != nil {
		return strings.TrimSpace(match[1])
	}

	return fallback
}
