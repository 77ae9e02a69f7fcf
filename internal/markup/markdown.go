// Package markup converts free-form model markdown into Telegram's
// MarkdownV2 dialect and splits the result into transport-sized chunks.
package markup

import (
	"errors"
	"strings"
)

// Reserved punctuation that MarkdownV2 requires escaped outside entities.
const reserved = "_*[]()~`>#+-=|{}.!\\"

// ToMarkdownV2 rewrites general markdown into MarkdownV2. Recognized
// constructs (bold, italic, strikethrough, inline code, fenced code blocks,
// links, headings) keep their delimiters balanced; an opener with no close
// is escaped as literal text, an unterminated fence is closed. Everything
// else is escaped character by character.
func ToMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	convert(&b, []rune(s), true)
	return b.String()
}

// convert walks the runes emitting MarkdownV2. block enables line-level
// constructs (fences, headings); inline recursion runs with block=false.
func convert(b *strings.Builder, r []rune, block bool) {
	lineStart := true
	i := 0
	for i < len(r) {
		if block && lineStart && hasSeq(r, i, "```") {
			i = convertFence(b, r, i)
			lineStart = true
			continue
		}
		if block && lineStart && r[i] == '#' {
			if next, ok := convertHeading(b, r, i); ok {
				i = next
				lineStart = false
				continue
			}
		}

		switch {
		case r[i] == '`':
			i = convertInlineCode(b, r, i)
		case r[i] == '[':
			i = convertLink(b, r, i)
		case hasSeq(r, i, "***"):
			i = convertEmphasis(b, r, i, "***", "*_", "_*")
		case hasSeq(r, i, "**"):
			i = convertEmphasis(b, r, i, "**", "*", "*")
		case hasSeq(r, i, "__"):
			i = convertEmphasis(b, r, i, "__", "*", "*")
		case hasSeq(r, i, "~~"):
			i = convertEmphasis(b, r, i, "~~", "~", "~")
		case r[i] == '*':
			i = convertEmphasis(b, r, i, "*", "_", "_")
		case r[i] == '_':
			i = convertEmphasis(b, r, i, "_", "_", "_")
		default:
			escapeRune(b, r[i])
			lineStart = r[i] == '\n'
			i++
			continue
		}
		lineStart = false
	}
}

// convertFence emits a fenced code block starting at i (which points at the
// opening backticks). A missing closing fence is repaired by appending one.
func convertFence(b *strings.Builder, r []rune, i int) int {
	bodyStart := i + 3
	end := -1
	for j := bodyStart + 1; j+3 <= len(r); j++ {
		if hasSeq(r, j, "```") && r[j-1] == '\n' {
			end = j
			break
		}
	}

	b.WriteString("```")
	var body []rune
	if end == -1 {
		body = r[bodyStart:]
	} else {
		body = r[bodyStart:end]
	}
	escapeCode(b, body)
	if len(body) == 0 || body[len(body)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString("```")

	if end == -1 {
		return len(r)
	}
	return end + 3
}

// convertHeading renders "# Title" as a bold line. Heading text is emitted
// fully escaped so the surrounding bold markers always balance.
func convertHeading(b *strings.Builder, r []rune, i int) (int, bool) {
	level := 0
	j := i
	for j < len(r) && r[j] == '#' && level < 6 {
		level++
		j++
	}
	if j >= len(r) || r[j] != ' ' {
		return 0, false
	}
	j++
	end := j
	for end < len(r) && r[end] != '\n' {
		end++
	}
	text := strings.TrimSpace(string(r[j:end]))
	if text == "" {
		return 0, false
	}
	b.WriteByte('*')
	for _, c := range text {
		escapeRune(b, c)
	}
	b.WriteByte('*')
	return end, true
}

func convertInlineCode(b *strings.Builder, r []rune, i int) int {
	end := -1
	for j := i + 1; j < len(r) && r[j] != '\n'; j++ {
		if r[j] == '`' {
			end = j
			break
		}
	}
	if end == -1 || end == i+1 {
		escapeRune(b, r[i])
		return i + 1
	}
	b.WriteByte('`')
	escapeCode(b, r[i+1:end])
	b.WriteByte('`')
	return end + 1
}

func convertLink(b *strings.Builder, r []rune, i int) int {
	textEnd := -1
	for j := i + 1; j < len(r) && r[j] != '\n'; j++ {
		if r[j] == ']' {
			textEnd = j
			break
		}
	}
	if textEnd == -1 || textEnd+1 >= len(r) || r[textEnd+1] != '(' {
		escapeRune(b, r[i])
		return i + 1
	}
	urlEnd := -1
	for j := textEnd + 2; j < len(r) && r[j] != '\n'; j++ {
		if r[j] == ')' {
			urlEnd = j
			break
		}
	}
	if urlEnd == -1 {
		escapeRune(b, r[i])
		return i + 1
	}

	b.WriteByte('[')
	convert(b, r[i+1:textEnd], false)
	b.WriteString("](")
	for _, c := range r[textEnd+2 : urlEnd] {
		if c == ')' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte(')')
	return urlEnd + 1
}

// convertEmphasis handles a paired delimiter at i. An opener followed by
// whitespace (a list bullet, a bare asterisk) or with no closing delimiter
// ahead is escaped as literal text.
func convertEmphasis(b *strings.Builder, r []rune, i int, delim, openTag, closeTag string) int {
	inner := i + len(delim)
	end := -1
	if inner < len(r) && r[inner] != ' ' && r[inner] != '\n' {
		for j := inner; j+len(delim) <= len(r); j++ {
			if hasSeq(r, j, delim) {
				end = j
				break
			}
		}
	}
	if end == -1 || end == inner {
		for _, c := range delim {
			escapeRune(b, c)
		}
		return i + len(delim)
	}
	b.WriteString(openTag)
	convert(b, r[inner:end], false)
	b.WriteString(closeTag)
	return end + len(delim)
}

// escapeCode escapes the two characters MarkdownV2 reserves inside code
// entities.
func escapeCode(b *strings.Builder, body []rune) {
	for _, c := range body {
		if c == '\\' || c == '`' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
}

func escapeRune(b *strings.Builder, c rune) {
	if strings.ContainsRune(reserved, c) {
		b.WriteByte('\\')
	}
	b.WriteRune(c)
}

func hasSeq(r []rune, i int, s string) bool {
	for _, c := range s {
		if i >= len(r) || r[i] != c {
			return false
		}
		i++
	}
	return true
}

// Render converts raw model output and splits it for transport. A non-empty
// input that yields no chunks is reported as an error so callers can fall
// back to sending the raw text.
func Render(raw string, limit int) ([]string, error) {
	chunks := Split(ToMarkdownV2(raw), limit)
	if len(chunks) == 0 {
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		return nil, errors.New("markdown rendering produced no chunks")
	}
	return chunks, nil
}
