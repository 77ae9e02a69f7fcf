package markup

import "strings"

// fenceRepairLen reserves room for a "\n```" closer when a code block has
// to be hard-split.
const fenceRepairLen = 4

// Split cuts text into chunks of at most limit runes. It prefers a newline
// boundary at or before the limit, then a space, then a hard cut. A boundary
// is never placed between an escape backslash and the character it escapes,
// and never inside an open code fence: the cut moves back to before the
// fence opener, or, when the fence itself exceeds the limit, the fence is
// closed at the cut and reopened in the next chunk.
func Split(text string, limit int) []string {
	if limit <= 0 {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/limit+1)

	for len(runes) > limit {
		cut := boundary(runes, limit)

		if open, at := openFenceBefore(runes, cut); open {
			switch {
			case at > 0:
				cut = at
			case limit > 2*fenceRepairLen:
				// Fence longer than a whole chunk: close and reopen.
				at := escapeSafe(runes, limit-fenceRepairLen)
				if at < fenceRepairLen {
					at = limit - fenceRepairLen
				}
				head := strings.TrimRight(string(runes[:at]), "\n ")
				chunks = append(chunks, head+"\n```")
				runes = append([]rune("```\n"), runes[at:]...)
				continue
			default:
				cut = limit
			}
		}

		cut = escapeSafe(runes, cut)
		if cut <= 0 {
			cut = limit
		}

		head := strings.TrimRight(string(runes[:cut]), "\n ")
		if head != "" {
			chunks = append(chunks, head)
		}
		rest := strings.TrimLeft(string(runes[cut:]), "\n ")
		runes = []rune(rest)
	}

	if tail := strings.TrimSpace(string(runes)); tail != "" {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// boundary picks the preferred cut position within (0, limit]: the last
// newline, else the last space, else the limit itself.
func boundary(runes []rune, limit int) int {
	for j := limit; j > 0; j-- {
		if runes[j-1] == '\n' {
			return j - 1
		}
	}
	for j := limit; j > 0; j-- {
		if runes[j-1] == ' ' {
			return j - 1
		}
	}
	return limit
}

// openFenceBefore reports whether position cut falls inside an unclosed
// code fence, and the opener's position when it does.
func openFenceBefore(runes []rune, cut int) (bool, int) {
	open := false
	opener := -1
	for j := 0; j+3 <= cut; j++ {
		if (j == 0 || runes[j-1] == '\n') && hasSeq(runes, j, "```") {
			if open {
				open = false
			} else {
				open = true
				opener = j
			}
			j += 2
		}
	}
	if !open {
		return false, -1
	}
	return true, opener
}

// escapeSafe moves the cut backwards while it would separate an escaping
// backslash from the character it escapes.
func escapeSafe(runes []rune, cut int) int {
	for cut > 0 {
		trailing := 0
		for k := cut - 1; k >= 0 && runes[k] == '\\'; k-- {
			trailing++
		}
		if trailing%2 == 0 {
			return cut
		}
		cut--
	}
	return cut
}
