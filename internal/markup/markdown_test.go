package markup

import (
	"strings"
	"testing"
)

func TestToMarkdownV2Constructs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"reserved punctuation", "a.b!c#d", `a\.b\!c\#d`},
		{"bold", "**bold**", "*bold*"},
		{"bold alt", "__bold__", "*bold*"},
		{"italic star", "*italic*", "_italic_"},
		{"italic underscore", "_italic_", "_italic_"},
		{"bold italic", "***both***", "*_both_*"},
		{"strikethrough", "~~gone~~", "~gone~"},
		{"inline code", "run `go build` now", "run `go build` now"},
		{"inline code keeps reserved", "`a.b`", "`a.b`"},
		{"link", "[go](https://go.dev)", "[go](https://go.dev)"},
		{"link with trailing paren", "[x](http://a/b)c)", `[x](http://a/b)c\)`},
		{"heading", "# Title", "*Title*"},
		{"heading with punctuation", "## Release 1.0!", `*Release 1\.0\!*`},
		{"nested bold italic", "**a *b* c**", "*a _b_ c*"},
		{"backslash", `a\b`, `a\\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMarkdownV2(tt.input); got != tt.want {
				t.Errorf("ToMarkdownV2(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToMarkdownV2UnterminatedConstructs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated bold", "**bold", `\*\*bold`},
		{"unterminated italic", "*italic", `\*italic`},
		{"unterminated strikethrough", "~~oops", `\~\~oops`},
		{"lone backtick", "a ` b", "a \\` b"},
		{"bare bracket", "see [1 and more", `see \[1 and more`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMarkdownV2(tt.input); got != tt.want {
				t.Errorf("ToMarkdownV2(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Every asterisk the converter emits must be either an escape target or
// half of a balanced pair, whatever the input.
func TestToMarkdownV2NeverLeavesUnbalancedBold(t *testing.T) {
	inputs := []string{
		"**bold",
		"text **bold** and **dangling",
		"***a** b",
		"** **",
	}
	for _, input := range inputs {
		got := ToMarkdownV2(input)
		if n := countUnescaped(got, '*'); n%2 != 0 {
			t.Errorf("input %q: %d unescaped asterisks in %q", input, n, got)
		}
	}
}

func TestToMarkdownV2FencedBlock(t *testing.T) {
	input := "before\n```go\nfmt.Println(1)\n```\nafter."
	got := ToMarkdownV2(input)

	if !strings.Contains(got, "```go\nfmt.Println(1)\n```") {
		t.Errorf("code block body must stay unescaped, got %q", got)
	}
	if !strings.Contains(got, `after\.`) {
		t.Errorf("text after the block must be escaped, got %q", got)
	}
	if strings.Count(got, "```")%2 != 0 {
		t.Errorf("unbalanced fences in %q", got)
	}
}

func TestToMarkdownV2RepairsUnterminatedFence(t *testing.T) {
	got := ToMarkdownV2("```\ncode with no close")
	if strings.Count(got, "```") != 2 {
		t.Fatalf("expected the fence to be closed, got %q", got)
	}
	if !strings.HasSuffix(got, "```") {
		t.Errorf("expected trailing fence, got %q", got)
	}
}

func TestRenderSplitsUnderLimit(t *testing.T) {
	raw := strings.Repeat("word ", 500)
	chunks, err := Render(raw, 400)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if n := len([]rune(chunk)); n > 400 {
			t.Errorf("chunk %d has %d runes, limit 400", i, n)
		}
	}
}

func TestRenderEmptyInput(t *testing.T) {
	chunks, err := Render("", 4000)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

// countUnescaped counts occurrences of c not preceded by an escaping
// backslash.
func countUnescaped(s string, c rune) int {
	runes := []rune(s)
	n := 0
	for i, r := range runes {
		if r != c {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && runes[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			n++
		}
	}
	return n
}
