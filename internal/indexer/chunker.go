package indexer

import (
	"regexp"
	"strings"
)

// MaxChunkChars bounds the size of any emitted chunk.
const MaxChunkChars = 6000

// priorityHeadings are heading texts (case-insensitive, trimmed) that are
// boosted during search ranking.
var priorityHeadings = map[string]bool{
	"current status": true,
	"next":           true,
	"next steps":     true,
	"blockers":       true,
	"blocked by":     true,
	"decisions":      true,
}

// Chunk is a single ordered piece of a document's body, carrying the
// heading it falls under (if any) for ranking and display.
type Chunk struct {
	Heading           string // "" when this chunk has no heading (preamble)
	HeadingLevel      int    // 0 means no heading
	Content           string
	ChunkOrder        int
	CharOffset        int
	IsPriorityHeading bool
}

// IsPriorityHeading reports whether heading (trimmed, case-insensitive)
// is one of the boosted priority headings.
func IsPriorityHeading(heading string) bool {
	if heading == "" {
		return false
	}
	return priorityHeadings[strings.ToLower(strings.TrimSpace(heading))]
}

var headingPattern = regexp.MustCompile(`(?m)^(#{1,2})[ \t]+(.+)$`)

type section struct {
	heading    string
	level      int
	content    string
	charOffset int
}

// splitByHeadings splits body into sections at each level-1/2 heading line.
// Text before the first heading becomes a preamble section with an empty
// heading and level 0.
func splitByHeadings(body string) []section {
	matches := headingPattern.FindAllStringSubmatchIndex(body, -1)

	var sections []section
	lastEnd := 0
	lastHeading := ""
	lastLevel := 0

	appendSection := func(heading string, level int, content string, offset int) {
		trimmed := strings.TrimSpace(content)
		if trimmed != "" || heading != "" {
			sections = append(sections, section{heading: heading, level: level, content: trimmed, charOffset: offset})
		}
	}

	for _, m := range matches {
		start, end := m[0], m[1]
		if start > lastEnd {
			appendSection(lastHeading, lastLevel, body[lastEnd:start], lastEnd)
		}

		hashes := body[m[2]:m[3]]
		headingText := strings.TrimSpace(body[m[4]:m[5]])
		lastHeading = headingText
		lastLevel = len(hashes)
		lastEnd = end
		if lastEnd < len(body) && body[lastEnd] == '\n' {
			lastEnd++
		}
	}

	if lastEnd < len(body) {
		appendSection(lastHeading, lastLevel, body[lastEnd:], lastEnd)
	} else if lastHeading != "" && len(sections) == 0 {
		sections = append(sections, section{heading: lastHeading, level: lastLevel, content: "", charOffset: lastEnd})
	}

	if len(sections) == 0 {
		sections = append(sections, section{heading: "", level: 0, content: strings.TrimSpace(body), charOffset: 0})
	}

	return sections
}

// splitByParagraphs greedily packs blank-line-delimited paragraphs into
// chunks of at most maxChars. A paragraph that alone exceeds maxChars is
// further split by splitByLines.
func splitByParagraphs(content string, maxChars int) []string {
	paragraphs := regexp.MustCompile(`\n\n+`).Split(content, -1)

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
			currentLen = 0
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > maxChars {
			flush()
			chunks = append(chunks, splitByLines(para, maxChars)...)
			continue
		}

		sep := 0
		if len(current) > 0 {
			sep = 2
		}
		if currentLen+sep+len(para) > maxChars && len(current) > 0 {
			flush()
			sep = 0
		}

		current = append(current, para)
		currentLen += sep + len(para)
	}
	flush()

	return chunks
}

// splitByLines greedily packs lines into chunks of at most maxChars. A
// line that alone exceeds maxChars is hard-split at the character limit.
func splitByLines(content string, maxChars int) []string {
	lines := strings.Split(content, "\n")

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentLen = 0
		}
	}

	for _, line := range lines {
		if len(line) > maxChars {
			flush()
			chunks = append(chunks, hardSplit(line, maxChars)...)
			continue
		}

		sep := 0
		if len(current) > 0 {
			sep = 1
		}
		if currentLen+sep+len(line) > maxChars && len(current) > 0 {
			flush()
			sep = 0
		}

		current = append(current, line)
		currentLen += sep + len(line)
	}
	flush()

	return chunks
}

// hardSplit breaks s into maxChars-sized pieces with no regard for word or
// line boundaries, for the rare line that alone exceeds the limit.
func hardSplit(s string, maxChars int) []string {
	runes := []rune(s)
	var pieces []string
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[i:end]))
	}
	if len(pieces) == 0 {
		pieces = append(pieces, "")
	}
	return pieces
}

// ChunkBody splits a document's frontmatter-stripped body into an ordered
// sequence of chunks, each no larger than MaxChunkChars.
func ChunkBody(body string) []Chunk {
	sections := splitByHeadings(body)

	var chunks []Chunk
	order := 0

	for _, sec := range sections {
		if len(sec.content) <= MaxChunkChars {
			chunks = append(chunks, Chunk{
				Heading:           sec.heading,
				HeadingLevel:      sec.level,
				Content:           sec.content,
				ChunkOrder:        order,
				CharOffset:        sec.charOffset,
				IsPriorityHeading: IsPriorityHeading(sec.heading),
			})
			order++
			continue
		}

		subContents := splitByParagraphs(sec.content, MaxChunkChars)
		priority := IsPriorityHeading(sec.heading)
		for _, sub := range subContents {
			chunks = append(chunks, Chunk{
				Heading:           sec.heading,
				HeadingLevel:      sec.level,
				Content:           sub,
				ChunkOrder:        order,
				CharOffset:        sec.charOffset,
				IsPriorityHeading: priority,
			})
			order++
		}
	}

	return chunks
}
